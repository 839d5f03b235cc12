package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/test-directory-reconciler/internal/domain"
)

func TestReconciliationTable(t *testing.T) {
	records := []domain.ReconciliationRecord{
		{
			IndicationKey:       "R130.1_Short QT syndrome_P",
			PanelNames:          []string{"Short QT syndrome"},
			AuthoritativeGenes:  []string{"HGNC:1390", "HGNC:6251"},
			MatchedTestCode:     "R130.1",
			MatchedTargetText:   "Short QT syndrome (224)",
			MatchedPanelVersion: "1.4",
			ResolvedTestGenes:   []string{"HGNC:1390", "HGNC:6251"},
			Outcome:             domain.OutcomeIdentical,
		},
	}

	table := ReconciliationTable("Identical", records)

	assert.Equal(t, "Identical", table.Title)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{
		"R130.1_Short QT syndrome_P",
		"Short QT syndrome",
		"HGNC:1390, HGNC:6251",
		"R130.1",
		"Short QT syndrome (224)",
		"1.4",
		"HGNC:1390, HGNC:6251",
		"",
		"",
	}, table.Rows[0])
}

func TestWithGeneChanges(t *testing.T) {
	records := []domain.ReconciliationRecord{
		{IndicationKey: "same"},
		{IndicationKey: "removed", RemovedGenes: []string{"HGNC:29090"}},
		{IndicationKey: "added", AddedGenes: []string{"HGNC:3604"}},
	}

	changed := WithGeneChanges(records)

	require.Len(t, changed, 2)
	assert.Equal(t, "removed", changed[0].IndicationKey)
	assert.Equal(t, "added", changed[1].IndicationKey)
}

func TestTargetTable(t *testing.T) {
	records := []domain.TestRecord{
		{
			Code:           "R200.1",
			IndicationName: "Mixed target",
			TargetText:     "BMPR2; monogenic diabetes",
			GeneRefs: []domain.GeneReference{
				{Symbol: "BMPR2", HGNCID: "HGNC:1078", MatchedVia: domain.MatchExact},
				{Symbol: "monogenic diabetes", MatchedVia: domain.MatchUnresolved},
			},
		},
	}

	table := TargetTable("Targets", records)

	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "HGNC:1078", row[4])
	// Unresolved elements land in the manual-review column
	assert.Equal(t, "monogenic diabetes", row[5])
}

func TestPresenceTable(t *testing.T) {
	table := PresenceTable("Presence", []domain.GenePresence{
		{Gene: "HGNC:1390", InDatabase: true, HasClinicalTranscript: true},
		{Gene: "HGNC:99999"},
	})

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"HGNC:1390", "yes", "yes"}, table.Rows[0])
	assert.Equal(t, []string{"HGNC:99999", "no", "no"}, table.Rows[1])
}

func TestTestMethodTable(t *testing.T) {
	table := TestMethodTable("Methods", []domain.TestMethodFinding{
		{Code: "R300.1", TestMethod: "Karyotype"},
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"R300.1", "Karyotype"}, table.Rows[0])
}
