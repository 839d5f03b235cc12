package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/test-directory-reconciler/internal/reference"
	"github.com/test-directory-reconciler/internal/report"
	"github.com/test-directory-reconciler/internal/service"
	"github.com/test-directory-reconciler/pkg/external"

	"github.com/test-directory-reconciler/internal/domain"
)

var (
	checkTestDirectory string
	checkHGNCDump      string
	checkGenePanels    string
	checkPreload       bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a full reconciliation and write the HTML reports",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkTestDirectory, "test-directory", "", "test directory export (TSV)")
	checkCmd.Flags().StringVar(&checkHGNCDump, "hgnc-dump", "", "HGNC dump from genenames.org (TSV)")
	checkCmd.Flags().StringVar(&checkGenePanels, "genepanels", "", "genepanels file to compare against")
	checkCmd.Flags().BoolVar(&checkPreload, "preload", false, "preload all signed-off panels before reconciling")
	checkCmd.MarkFlagRequired("test-directory")
	checkCmd.MarkFlagRequired("hgnc-dump")
	checkCmd.MarkFlagRequired("genepanels")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := cfgManager.GetConfig()
	runID := uuid.NewString()
	log := logger.WithField("run_id", runID)

	store, err := reference.LoadHGNCDump(checkHGNCDump)
	if err != nil {
		return err
	}
	log.WithField("records", store.Len()).Info("Loaded HGNC dump")

	entries, err := reference.LoadGenePanels(checkGenePanels)
	if err != nil {
		return err
	}

	records, err := reference.LoadTestDirectory(checkTestDirectory, cfgManager.NGSTestMethodSet())
	if err != nil {
		return err
	}
	log.WithField("tests", len(records)).Info("Loaded test directory")

	client, err := external.NewPanelAppClient(external.PanelAppConfig{
		BaseURL:   cfg.PanelApp.BaseURL,
		Timeout:   cfg.PanelApp.Timeout,
		RateLimit: cfg.PanelApp.RateLimit,
		CacheSize: cfg.PanelApp.CacheSize,
	}, logger)
	if err != nil {
		return err
	}

	if checkPreload {
		if _, err := client.PreloadSignedOff(ctx); err != nil {
			return err
		}
	}

	resolver := service.NewSymbolResolver(store, logger)
	parser := service.NewTargetParser(resolver, logger)
	classifier := service.NewLocusClassifier(store, cfgManager.NoTranscriptGeneSet(), logger)
	expander := service.NewPanelExpander(client, cfgManager.UnaccessiblePanelSet(), logger)
	reconciler := service.NewReconciler(expander, classifier, logger)
	auditor := service.NewTestMethodAuditor(cfgManager.NGSTestMethodSet(), logger)

	resolved := parser.ResolveRecords(records)
	findings := auditor.Audit(resolved)

	status := domain.NewLocusStatus()
	result, err := reconciler.Reconcile(ctx, resolved, entries, status)
	if err != nil {
		return err
	}

	fresh := service.FindNewIndications(resolved, entries)

	log.WithField("identical", len(result.Identical)).
		WithField("removed", len(result.Removed)).
		WithField("replaced", len(result.Replaced)).
		WithField("new", len(fresh)).
		Info("Reconciliation complete")

	dir, err := report.NewRunFolder(cfg.Reconciler.OutputDir)
	if err != nil {
		return err
	}
	renderer := report.NewRenderer(dir, logger)

	if err := renderer.Render("ci_existing_in_both.html",
		report.ReconciliationTable("Clinical indications in both sources", result.Identical),
		report.ReconciliationTable("With gene content changes", report.WithGeneChanges(result.Identical)),
	); err != nil {
		return err
	}
	if err := renderer.Render("potential_replaced_ci.html",
		report.ReconciliationTable("Potentially replaced clinical indications", result.Replaced),
		report.ReconciliationTable("With gene content changes", report.WithGeneChanges(result.Replaced)),
	); err != nil {
		return err
	}
	if err := renderer.Render("removed_ci.html",
		report.ReconciliationTable("Removed clinical indications", result.Removed),
	); err != nil {
		return err
	}
	if err := renderer.Render("new_cis.html",
		report.TargetTable("New clinical indications", fresh),
	); err != nil {
		return err
	}
	if err := renderer.Render("targets.html",
		report.TargetTable("Resolved targets", resolved),
	); err != nil {
		return err
	}
	if err := renderer.Render("test_method.html",
		report.TestMethodTable("Potential new test methods", findings),
	); err != nil {
		return err
	}

	fmt.Printf("Reports written to %s\n", dir)
	return nil
}
