package reference

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/test-directory-reconciler/internal/domain"
)

// Column headers of the test directory export
const (
	colTestID             = "Test ID"
	colClinicalIndication = "Clinical Indication"
	colTargetGenes        = "Target/Genes"
	colTestMethod         = "Test Method"
)

// LoadTestDirectory parses a tab-separated test directory export. When
// ngsMethods is non-empty, rows whose test method is not in the set are
// dropped, mirroring the lab's in-scope filter.
func LoadTestDirectory(path string, ngsMethods map[string]struct{}) ([]domain.TestRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening test directory: %w", err)
	}
	defer f.Close()

	records, err := parseTestDirectory(f, ngsMethods)
	if err != nil {
		return nil, fmt.Errorf("parsing test directory %s: %w", path, err)
	}

	return records, nil
}

func parseTestDirectory(r io.Reader, ngsMethods map[string]struct{}) ([]domain.TestRecord, error) {
	reader := newTSVReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{
		colTestID, colClinicalIndication, colTargetGenes, colTestMethod,
	} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var records []domain.TestRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			i := index[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		record := domain.TestRecord{
			Code:           field(colTestID),
			IndicationName: field(colClinicalIndication),
			TargetText:     field(colTargetGenes),
			TestMethod:     field(colTestMethod),
		}

		if len(ngsMethods) > 0 {
			if _, ok := ngsMethods[record.TestMethod]; !ok {
				continue
			}
		}

		records = append(records, record)
	}

	return records, nil
}
