package reference

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/test-directory-reconciler/internal/domain"
)

// LoadGenePanels parses the genepanels file: a headerless tab-separated file
// with columns ci, panel, gene and an optional trailing panelapp_id.
func LoadGenePanels(path string) ([]domain.GenePanelEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening genepanels file: %w", err)
	}
	defer f.Close()

	entries, err := parseGenePanels(f)
	if err != nil {
		return nil, fmt.Errorf("parsing genepanels file %s: %w", path, err)
	}

	return entries, nil
}

func parseGenePanels(r io.Reader) ([]domain.GenePanelEntry, error) {
	reader := newTSVReader(r)

	var entries []domain.GenePanelEntry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 columns, got %d", len(entries)+1, len(row))
		}

		entry := domain.GenePanelEntry{
			IndicationKey: strings.TrimSpace(row[0]),
			PanelName:     strings.TrimSpace(row[1]),
			Gene:          strings.TrimSpace(row[2]),
		}
		if len(row) > 3 {
			entry.PanelAppID = strings.TrimSpace(row[3])
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
