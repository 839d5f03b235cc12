package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/test-directory-reconciler/internal/database"
)

var presenceGenesFile string

var presenceCmd = &cobra.Command{
	Use:   "presence [gene ...]",
	Short: "Check gene presence and clinical transcript status in the panel database",
	Long: `presence checks, for each HGNC identifier, whether the gene exists in the
panel database and whether it has a clinical transcript. Genes are given as
arguments or one per line via --genes-file.`,
	RunE: runPresence,
}

func init() {
	presenceCmd.Flags().StringVar(&presenceGenesFile, "genes-file", "", "file with one HGNC identifier per line")
}

func runPresence(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	genes := append([]string{}, args...)
	if presenceGenesFile != "" {
		fromFile, err := readGeneList(presenceGenesFile)
		if err != nil {
			return err
		}
		genes = append(genes, fromFile...)
	}
	if len(genes) == 0 {
		return fmt.Errorf("no genes given: pass HGNC identifiers as arguments or via --genes-file")
	}

	cfg := cfgManager.GetConfig()
	checker, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return err
	}
	defer checker.Close()

	results, err := checker.Check(ctx, genes)
	if err != nil {
		return err
	}

	fmt.Printf("%-16s %-20s %s\n", "Gene", "Present in database", "Has clinical transcript")
	for _, result := range results {
		fmt.Printf("%-16s %-20t %t\n", result.Gene, result.InDatabase, result.HasClinicalTranscript)
	}

	return nil
}

func readGeneList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening genes file: %w", err)
	}
	defer f.Close()

	var genes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			genes = append(genes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading genes file: %w", err)
	}

	return genes, nil
}
