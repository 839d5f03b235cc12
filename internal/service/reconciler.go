package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

// Reconciler aligns test-directory records to genepanels indications by code,
// falls back to prefix matching when the exact code is absent, and classifies
// each alignment as identical, removed or replaced together with the
// added/removed gene sets.
type Reconciler struct {
	expander   *PanelExpander
	classifier *LocusClassifier
	logger     *logrus.Logger
}

// ReconcileResult groups the classified records of one run.
type ReconcileResult struct {
	Identical []domain.ReconciliationRecord
	Removed   []domain.ReconciliationRecord
	Replaced  []domain.ReconciliationRecord
}

// NewReconciler creates a new reconciliation engine
func NewReconciler(expander *PanelExpander, classifier *LocusClassifier, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		expander:   expander,
		classifier: classifier,
		logger:     logger,
	}
}

// Reconcile walks every distinct indication key in the authoritative source
// and matches it against the test directory. Bespoke indications (leading
// "C") are skipped before any gene-set computation. The locus status cache is
// shared across the whole run so no gene is classified twice.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	testRecords []domain.TestRecord,
	entries []domain.GenePanelEntry,
	status *domain.LocusStatus,
) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	for _, key := range indicationKeys(entries) {
		if strings.HasPrefix(key, "C") {
			r.logger.WithField("indication", key).Info("Bespoke clinical indication, skipping")
			continue
		}

		parts := strings.SplitN(key, "_", 2)
		if len(parts) < 2 {
			r.logger.WithField("indication", key).Warn("Indication key without code_name structure, skipping")
			continue
		}
		rCode := parts[0]

		base := r.authoritativeSide(key, entries, status)

		exact := recordsByCode(testRecords, rCode)

		if len(exact) == 1 {
			record := base
			record.Outcome = domain.OutcomeIdentical
			if err := r.fillTestSide(ctx, &record, exact[0], status); err != nil {
				return nil, err
			}
			result.Identical = append(result.Identical, record)
			continue
		}

		// No single exact match: fall back to the numeric code prefix.
		prefix := strings.SplitN(rCode, ".", 2)[0]
		fallback := recordsByCodePrefix(testRecords, prefix)

		if len(fallback) == 0 {
			record := base
			record.Outcome = domain.OutcomeRemoved
			result.Removed = append(result.Removed, record)
			continue
		}

		// One record per fallback candidate; the closest gene overlap is
		// not auto-selected, all candidates are surfaced for human review.
		for _, candidate := range fallback {
			record := base
			record.Outcome = domain.OutcomeReplaced
			if err := r.fillTestSide(ctx, &record, candidate, status); err != nil {
				return nil, err
			}
			result.Replaced = append(result.Replaced, record)
		}
	}

	return result, nil
}

// FindNewIndications returns every test-directory record whose code prefix
// never appears among the authoritative indication keys. These are genuinely
// new tests with no historical counterpart, reported separately from
// replacements.
func FindNewIndications(
	testRecords []domain.TestRecord,
	entries []domain.GenePanelEntry,
) []domain.TestRecord {
	known := make(map[string]struct{})
	for _, key := range indicationKeys(entries) {
		code := strings.SplitN(key, "_", 2)[0]
		known[strings.SplitN(code, ".", 2)[0]] = struct{}{}
	}

	var fresh []domain.TestRecord
	for _, record := range testRecords {
		prefix := strings.SplitN(record.Code, ".", 2)[0]
		if _, ok := known[prefix]; !ok {
			fresh = append(fresh, record)
		}
	}
	return fresh
}

// authoritativeSide builds the record skeleton for one indication: joined
// panel names and the locus-filtered authoritative gene set. An indication
// with zero genes after filtering is valid input, not a bug.
func (r *Reconciler) authoritativeSide(
	key string,
	entries []domain.GenePanelEntry,
	status *domain.LocusStatus,
) domain.ReconciliationRecord {
	var panelNames []string
	seenPanels := make(map[string]struct{})
	genes := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IndicationKey != key {
			continue
		}
		if _, ok := seenPanels[entry.PanelName]; !ok {
			seenPanels[entry.PanelName] = struct{}{}
			panelNames = append(panelNames, entry.PanelName)
		}
		if entry.Gene != "" {
			genes[entry.Gene] = struct{}{}
		}
	}

	inScope := r.classifier.FilterInScope(genes, status)

	return domain.ReconciliationRecord{
		IndicationKey:      key,
		PanelNames:         panelNames,
		AuthoritativeGenes: sortedSlice(inScope),
	}
}

// fillTestSide computes the test-directory side of a record: the resolved
// gene set, the joined panel version string and the gene-set difference
// against the authoritative side.
func (r *Reconciler) fillTestSide(
	ctx context.Context,
	record *domain.ReconciliationRecord,
	test domain.TestRecord,
	status *domain.LocusStatus,
) error {
	genes := make(map[string]struct{})

	for _, panelID := range test.PanelRefs {
		expanded, err := r.expander.Expand(ctx, panelID)
		if err != nil {
			return fmt.Errorf("test %s: %w", test.Code, err)
		}
		for gene := range expanded {
			genes[gene] = struct{}{}
		}
	}

	for _, ref := range test.GeneRefs {
		if ref.Resolved() {
			genes[ref.HGNCID] = struct{}{}
		}
	}

	testGenes := r.classifier.FilterInScope(genes, status)

	version, err := r.expander.JoinVersions(ctx, test.PanelRefs)
	if err != nil {
		return fmt.Errorf("test %s: %w", test.Code, err)
	}

	authGenes := make(map[string]struct{}, len(record.AuthoritativeGenes))
	for _, gene := range record.AuthoritativeGenes {
		authGenes[gene] = struct{}{}
	}

	record.MatchedTestCode = test.Code
	record.MatchedTargetText = test.TargetText
	record.MatchedPanelVersion = version
	record.ResolvedTestGenes = sortedSlice(testGenes)
	record.RemovedGenes = sortedDifference(authGenes, testGenes)
	record.AddedGenes = sortedDifference(testGenes, authGenes)

	return nil
}

// indicationKeys returns the distinct indication keys in first-seen order.
func indicationKeys(entries []domain.GenePanelEntry) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, entry := range entries {
		if _, ok := seen[entry.IndicationKey]; !ok {
			seen[entry.IndicationKey] = struct{}{}
			keys = append(keys, entry.IndicationKey)
		}
	}
	return keys
}

func recordsByCode(records []domain.TestRecord, code string) []domain.TestRecord {
	var matched []domain.TestRecord
	for _, record := range records {
		if record.Code == code {
			matched = append(matched, record)
		}
	}
	return matched
}

func recordsByCodePrefix(records []domain.TestRecord, prefix string) []domain.TestRecord {
	var matched []domain.TestRecord
	for _, record := range records {
		if strings.Contains(record.Code, prefix) {
			matched = append(matched, record)
		}
	}
	return matched
}

func sortedSlice(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// sortedDifference returns a−b sorted, or nil when empty so the report layer
// can distinguish "no difference" from an empty comparison.
func sortedDifference(a, b map[string]struct{}) []string {
	var diff []string
	for v := range a {
		if _, ok := b[v]; !ok {
			diff = append(diff, v)
		}
	}
	if len(diff) == 0 {
		return nil
	}
	sort.Strings(diff)
	return diff
}
