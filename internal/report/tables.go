package report

import (
	"strings"

	"github.com/test-directory-reconciler/internal/domain"
)

var reconciliationColumns = []string{
	"Indication", "Panel", "Genes", "Test ID", "Target/Genes",
	"Panel version", "Test genes", "Removed", "Added",
}

// ReconciliationTable builds a display table from classified records.
func ReconciliationTable(title string, records []domain.ReconciliationRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.IndicationKey,
			strings.Join(rec.PanelNames, ", "),
			strings.Join(rec.AuthoritativeGenes, ", "),
			rec.MatchedTestCode,
			rec.MatchedTargetText,
			rec.MatchedPanelVersion,
			strings.Join(rec.ResolvedTestGenes, ", "),
			strings.Join(rec.RemovedGenes, ", "),
			strings.Join(rec.AddedGenes, ", "),
		})
	}

	return Table{Title: title, Columns: reconciliationColumns, Rows: rows}
}

// WithGeneChanges filters a record set down to rows where the gene content
// actually differs, the sub-table a reviewer reads first.
func WithGeneChanges(records []domain.ReconciliationRecord) []domain.ReconciliationRecord {
	var changed []domain.ReconciliationRecord
	for _, rec := range records {
		if len(rec.RemovedGenes) > 0 || len(rec.AddedGenes) > 0 {
			changed = append(changed, rec)
		}
	}
	return changed
}

// TargetTable builds a display table of resolved targets per test record.
func TargetTable(title string, records []domain.TestRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		var genes, unresolved []string
		for _, ref := range rec.GeneRefs {
			if ref.Resolved() {
				genes = append(genes, ref.HGNCID)
			} else {
				unresolved = append(unresolved, ref.Symbol)
			}
		}

		rows = append(rows, []string{
			rec.Code,
			rec.IndicationName,
			rec.TargetText,
			strings.Join(rec.PanelRefs, ", "),
			strings.Join(genes, ", "),
			strings.Join(unresolved, ", "),
		})
	}

	return Table{
		Title: title,
		Columns: []string{
			"Test ID", "Clinical Indication", "Target/Genes",
			"Identified panels", "Identified genes", "Check manually",
		},
		Rows: rows,
	}
}

// TestMethodTable builds a display table of test-method audit findings.
func TestMethodTable(title string, findings []domain.TestMethodFinding) Table {
	rows := make([][]string, 0, len(findings))
	for _, finding := range findings {
		rows = append(rows, []string{finding.Code, finding.TestMethod})
	}

	return Table{
		Title:   title,
		Columns: []string{"Test ID", "Potential new test method"},
		Rows:    rows,
	}
}

// PresenceTable builds a display table of gene presence-check results.
func PresenceTable(title string, results []domain.GenePresence) Table {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		rows = append(rows, []string{
			result.Gene,
			yesNo(result.InDatabase),
			yesNo(result.HasClinicalTranscript),
		})
	}

	return Table{
		Title:   title,
		Columns: []string{"Gene", "Present in database", "Has clinical transcript"},
		Rows:    rows,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
