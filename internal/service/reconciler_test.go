package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/test-directory-reconciler/internal/domain"
)

func reconcilerFixture(source domain.PanelSource) (*Reconciler, *domain.LocusStatus) {
	ref := newFakeReference(
		proteinCoding("HGNC:1390", "CACNA1C"),
		proteinCoding("HGNC:6251", "KCNH2"),
		proteinCoding("HGNC:6263", "KCNQ1"),
		proteinCoding("HGNC:6294", "KCNJ2"),
		proteinCoding("HGNC:29090", "SMCHD1"),
		proteinCoding("HGNC:3603", "FGFR2"),
		proteinCoding("HGNC:3604", "FGFR3"),
	)
	classifier := NewLocusClassifier(ref, nil, testLogger())
	expander := NewPanelExpander(source, nil, testLogger())
	return NewReconciler(expander, classifier, testLogger()), domain.NewLocusStatus()
}

func TestReconciler_Reconcile(t *testing.T) {
	shortQT := []domain.GenePanelEntry{
		{IndicationKey: "R130.1_Short QT syndrome_P", PanelName: "Short QT syndrome", Gene: "HGNC:1390"},
		{IndicationKey: "R130.1_Short QT syndrome_P", PanelName: "Short QT syndrome", Gene: "HGNC:6251"},
		{IndicationKey: "R130.1_Short QT syndrome_P", PanelName: "Short QT syndrome", Gene: "HGNC:6263"},
		{IndicationKey: "R130.1_Short QT syndrome_P", PanelName: "Short QT syndrome", Gene: "HGNC:6294"},
	}

	t.Run("exact code match is identical", func(t *testing.T) {
		source := new(MockPanelSource)
		source.On("GetGenes", context.Background(), "224").
			Return([]string{"HGNC:1390", "HGNC:6251", "HGNC:6263", "HGNC:6294"}, nil)
		source.On("GetVersion", context.Background(), "224").Return("1.4", nil)

		reconciler, status := reconcilerFixture(source)

		records := []domain.TestRecord{
			{Code: "R130.1", TargetText: "Short QT syndrome (224)", PanelRefs: []string{"224"}},
		}

		result, err := reconciler.Reconcile(context.Background(), records, shortQT, status)
		require.NoError(t, err)

		require.Len(t, result.Identical, 1)
		assert.Empty(t, result.Removed)
		assert.Empty(t, result.Replaced)

		got := result.Identical[0]
		assert.Equal(t, domain.OutcomeIdentical, got.Outcome)
		assert.Equal(t, "R130.1_Short QT syndrome_P", got.IndicationKey)
		assert.Equal(t, []string{"Short QT syndrome"}, got.PanelNames)
		assert.Equal(t, "R130.1", got.MatchedTestCode)
		assert.Equal(t, "1.4", got.MatchedPanelVersion)
		assert.Equal(t,
			[]string{"HGNC:1390", "HGNC:6251", "HGNC:6263", "HGNC:6294"},
			got.AuthoritativeGenes)
		assert.Equal(t, got.AuthoritativeGenes, got.ResolvedTestGenes)
		assert.Nil(t, got.RemovedGenes)
		assert.Nil(t, got.AddedGenes)
	})

	t.Run("retired code falls back to a replacement", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "R100.1_Rare syndromic craniosynostosis_P", PanelName: "Craniosynostosis", Gene: "HGNC:3603"},
			{IndicationKey: "R100.1_Rare syndromic craniosynostosis_P", PanelName: "Craniosynostosis", Gene: "HGNC:29090"},
		}
		source := new(MockPanelSource)
		source.On("GetGenes", context.Background(), "168").
			Return([]string{"HGNC:3603"}, nil)
		source.On("GetVersion", context.Background(), "168").Return("4.0", nil)

		reconciler, status := reconcilerFixture(source)

		records := []domain.TestRecord{
			{Code: "R100.2", TargetText: "Craniosynostosis (168)", PanelRefs: []string{"168"}},
		}

		result, err := reconciler.Reconcile(context.Background(), records, entries, status)
		require.NoError(t, err)

		assert.Empty(t, result.Identical)
		assert.Empty(t, result.Removed)
		require.Len(t, result.Replaced, 1)

		got := result.Replaced[0]
		assert.Equal(t, domain.OutcomeReplaced, got.Outcome)
		assert.Equal(t, "R100.2", got.MatchedTestCode)
		assert.Equal(t, []string{"HGNC:29090"}, got.RemovedGenes)
		assert.Nil(t, got.AddedGenes)
	})

	t.Run("indication absent from the test directory is removed", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "R1000.1_Gone syndrome_P", PanelName: "Gone syndrome", Gene: "HGNC:3603"},
		}
		reconciler, status := reconcilerFixture(new(MockPanelSource))

		records := []domain.TestRecord{
			{Code: "R130.1", TargetText: "Short QT syndrome (224)", PanelRefs: []string{"224"}},
		}

		result, err := reconciler.Reconcile(context.Background(), records, entries, status)
		require.NoError(t, err)

		require.Len(t, result.Removed, 1)
		got := result.Removed[0]
		assert.Equal(t, domain.OutcomeRemoved, got.Outcome)
		assert.Equal(t, []string{"HGNC:3603"}, got.AuthoritativeGenes)
		assert.Empty(t, got.MatchedTestCode)
		assert.Empty(t, got.ResolvedTestGenes)
	})

	t.Run("every fallback candidate yields its own record", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "R200.1_Some disorder_P", PanelName: "Some disorder", Gene: "HGNC:3603"},
		}
		source := new(MockPanelSource)
		source.On("GetGenes", context.Background(), "300").Return([]string{"HGNC:3603"}, nil)
		source.On("GetVersion", context.Background(), "300").Return("2.0", nil)
		source.On("GetGenes", context.Background(), "301").Return([]string{"HGNC:3604"}, nil)
		source.On("GetVersion", context.Background(), "301").Return("1.0", nil)

		reconciler, status := reconcilerFixture(source)

		records := []domain.TestRecord{
			{Code: "R200.2", TargetText: "(300)", PanelRefs: []string{"300"}},
			{Code: "R200.3", TargetText: "(301)", PanelRefs: []string{"301"}},
		}

		result, err := reconciler.Reconcile(context.Background(), records, entries, status)
		require.NoError(t, err)

		require.Len(t, result.Replaced, 2)
		assert.Equal(t, "R200.2", result.Replaced[0].MatchedTestCode)
		assert.Nil(t, result.Replaced[0].RemovedGenes)
		assert.Equal(t, "R200.3", result.Replaced[1].MatchedTestCode)
		assert.Equal(t, []string{"HGNC:3603"}, result.Replaced[1].RemovedGenes)
		assert.Equal(t, []string{"HGNC:3604"}, result.Replaced[1].AddedGenes)
	})

	t.Run("bespoke indications are skipped", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "C1.1_Bespoke test_P", PanelName: "Bespoke test", Gene: "HGNC:3603"},
		}
		source := new(MockPanelSource)
		reconciler, status := reconcilerFixture(source)

		result, err := reconciler.Reconcile(context.Background(), nil, entries, status)
		require.NoError(t, err)

		assert.Empty(t, result.Identical)
		assert.Empty(t, result.Removed)
		assert.Empty(t, result.Replaced)
		assert.Zero(t, status.Len())
	})

	t.Run("malformed indication key is skipped", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "R999", PanelName: "Broken", Gene: "HGNC:3603"},
		}
		reconciler, status := reconcilerFixture(new(MockPanelSource))

		result, err := reconciler.Reconcile(context.Background(), nil, entries, status)
		require.NoError(t, err)
		assert.Empty(t, result.Identical)
		assert.Empty(t, result.Removed)
		assert.Empty(t, result.Replaced)
	})

	t.Run("panel failure aborts the run", func(t *testing.T) {
		source := new(MockPanelSource)
		source.On("GetGenes", context.Background(), "224").
			Return(nil, errors.New("status 502"))

		reconciler, status := reconcilerFixture(source)

		records := []domain.TestRecord{
			{Code: "R130.1", PanelRefs: []string{"224"}},
		}

		_, err := reconciler.Reconcile(context.Background(), records, shortQT, status)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPanelUnavailable)
		assert.Contains(t, err.Error(), "R130.1")
	})

	t.Run("each indication lands in exactly one bucket", func(t *testing.T) {
		entries := append(append([]domain.GenePanelEntry{}, shortQT...),
			domain.GenePanelEntry{IndicationKey: "R1000.1_Gone syndrome_P", PanelName: "Gone syndrome", Gene: "HGNC:3603"},
			domain.GenePanelEntry{IndicationKey: "C1.1_Bespoke test_P", PanelName: "Bespoke test", Gene: "HGNC:3604"},
		)
		source := new(MockPanelSource)
		source.On("GetGenes", context.Background(), "224").
			Return([]string{"HGNC:1390", "HGNC:6251", "HGNC:6263", "HGNC:6294"}, nil)
		source.On("GetVersion", context.Background(), "224").Return("1.4", nil)

		reconciler, status := reconcilerFixture(source)

		records := []domain.TestRecord{
			{Code: "R130.1", PanelRefs: []string{"224"}},
		}

		result, err := reconciler.Reconcile(context.Background(), records, entries, status)
		require.NoError(t, err)

		seen := make(map[string]int)
		for _, rec := range result.Identical {
			seen[rec.IndicationKey]++
		}
		for _, rec := range result.Removed {
			seen[rec.IndicationKey]++
		}
		for _, rec := range result.Replaced {
			seen[rec.IndicationKey]++
		}
		assert.Equal(t, map[string]int{
			"R130.1_Short QT syndrome_P": 1,
			"R1000.1_Gone syndrome_P":    1,
		}, seen)
	})

	t.Run("gene-only test contributes resolved references", func(t *testing.T) {
		entries := []domain.GenePanelEntry{
			{IndicationKey: "R300.1_Single gene_G", PanelName: "Single gene", Gene: "HGNC:3603"},
		}
		reconciler, status := reconcilerFixture(new(MockPanelSource))

		records := []domain.TestRecord{
			{
				Code:       "R300.1",
				TargetText: "FGFR2",
				GeneRefs: []domain.GeneReference{
					{Symbol: "FGFR2", HGNCID: "HGNC:3603", MatchedVia: domain.MatchExact},
					{Symbol: "unidentifiable prose", MatchedVia: domain.MatchUnresolved},
				},
			},
		}

		result, err := reconciler.Reconcile(context.Background(), records, entries, status)
		require.NoError(t, err)

		require.Len(t, result.Identical, 1)
		got := result.Identical[0]
		assert.Equal(t, []string{"HGNC:3603"}, got.ResolvedTestGenes)
		assert.Empty(t, got.MatchedPanelVersion)
		assert.Nil(t, got.RemovedGenes)
		assert.Nil(t, got.AddedGenes)
	})
}

func TestFindNewIndications(t *testing.T) {
	entries := []domain.GenePanelEntry{
		{IndicationKey: "R130.1_Short QT syndrome_P", PanelName: "Short QT syndrome", Gene: "HGNC:1390"},
		{IndicationKey: "R100.1_Craniosynostosis_P", PanelName: "Craniosynostosis", Gene: "HGNC:3603"},
	}

	records := []domain.TestRecord{
		{Code: "R130.1"},
		{Code: "R100.2"},
		{Code: "R443.1"},
		{Code: "R443.2"},
	}

	fresh := FindNewIndications(records, entries)

	require.Len(t, fresh, 2)
	assert.Equal(t, "R443.1", fresh[0].Code)
	assert.Equal(t, "R443.2", fresh[1].Code)
}
