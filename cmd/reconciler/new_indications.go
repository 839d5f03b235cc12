package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/test-directory-reconciler/internal/reference"
	"github.com/test-directory-reconciler/internal/report"
	"github.com/test-directory-reconciler/internal/service"
)

var (
	newTestDirectory string
	newHGNCDump      string
	newGenePanels    string
)

var newIndicationsCmd = &cobra.Command{
	Use:   "new-indications",
	Short: "Report test directory codes with no counterpart in genepanels",
	RunE:  runNewIndications,
}

func init() {
	newIndicationsCmd.Flags().StringVar(&newTestDirectory, "test-directory", "", "test directory export (TSV)")
	newIndicationsCmd.Flags().StringVar(&newHGNCDump, "hgnc-dump", "", "HGNC dump from genenames.org (TSV)")
	newIndicationsCmd.Flags().StringVar(&newGenePanels, "genepanels", "", "genepanels file to compare against")
	newIndicationsCmd.MarkFlagRequired("test-directory")
	newIndicationsCmd.MarkFlagRequired("hgnc-dump")
	newIndicationsCmd.MarkFlagRequired("genepanels")
}

func runNewIndications(cmd *cobra.Command, args []string) error {
	store, err := reference.LoadHGNCDump(newHGNCDump)
	if err != nil {
		return err
	}

	entries, err := reference.LoadGenePanels(newGenePanels)
	if err != nil {
		return err
	}

	records, err := reference.LoadTestDirectory(newTestDirectory, cfgManager.NGSTestMethodSet())
	if err != nil {
		return err
	}

	resolver := service.NewSymbolResolver(store, logger)
	parser := service.NewTargetParser(resolver, logger)

	resolved := parser.ResolveRecords(records)
	fresh := service.FindNewIndications(resolved, entries)

	dir, err := report.NewRunFolder(cfgManager.GetConfig().Reconciler.OutputDir)
	if err != nil {
		return err
	}
	renderer := report.NewRenderer(dir, logger)

	if err := renderer.Render("new_cis.html",
		report.TargetTable("New clinical indications", fresh),
	); err != nil {
		return err
	}

	fmt.Printf("Found %d new clinical indications, report written to %s\n", len(fresh), dir)
	return nil
}
