package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/test-directory-reconciler/internal/domain"
)

// Store is an indexed, immutable view over the HGNC dump. It implements
// domain.ReferenceStore.
type Store struct {
	byApproved map[string]domain.HGNCRecord
	byPrevious map[string][]domain.HGNCRecord
	byAlias    map[string][]domain.HGNCRecord
	byID       map[string]domain.HGNCRecord
	records    []domain.HGNCRecord
}

// NewStore builds the symbol indexes from a slice of HGNC records.
func NewStore(records []domain.HGNCRecord) *Store {
	s := &Store{
		byApproved: make(map[string]domain.HGNCRecord, len(records)),
		byPrevious: make(map[string][]domain.HGNCRecord),
		byAlias:    make(map[string][]domain.HGNCRecord),
		byID:       make(map[string]domain.HGNCRecord, len(records)),
		records:    records,
	}

	for _, rec := range records {
		s.byApproved[rec.ApprovedSymbol] = rec
		s.byID[rec.HGNCID] = rec
		for _, prev := range rec.PreviousSymbols {
			s.byPrevious[prev] = append(s.byPrevious[prev], rec)
		}
		for _, alias := range rec.AliasSymbols {
			s.byAlias[alias] = append(s.byAlias[alias], rec)
		}
	}

	return s
}

// ByApprovedSymbol returns the record whose approved symbol matches exactly.
func (s *Store) ByApprovedSymbol(symbol string) (domain.HGNCRecord, bool) {
	rec, ok := s.byApproved[symbol]
	return rec, ok
}

// ByPreviousSymbol returns every record listing the symbol as a previous symbol.
func (s *Store) ByPreviousSymbol(symbol string) []domain.HGNCRecord {
	return s.byPrevious[symbol]
}

// ByAliasSymbol returns every record listing the symbol as an alias.
func (s *Store) ByAliasSymbol(symbol string) []domain.HGNCRecord {
	return s.byAlias[symbol]
}

// ByID returns the record for an HGNC identifier.
func (s *Store) ByID(id string) (domain.HGNCRecord, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Column headers of the genenames.org custom dump
const (
	colHGNCID          = "HGNC ID"
	colApprovedSymbol  = "Approved symbol"
	colPreviousSymbols = "Previous symbols"
	colAliasSymbols    = "Alias symbols"
	colLocusGroup      = "Locus group"
	colChromosome      = "Chromosome"
)

// LoadHGNCDump parses a tab-separated HGNC dump into an indexed Store.
func LoadHGNCDump(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening HGNC dump: %w", err)
	}
	defer f.Close()

	records, err := parseHGNCDump(f)
	if err != nil {
		return nil, fmt.Errorf("parsing HGNC dump %s: %w", path, err)
	}

	return NewStore(records), nil
}

func parseHGNCDump(r io.Reader) ([]domain.HGNCRecord, error) {
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
		colHGNCID, colApprovedSymbol, colPreviousSymbols,
		colAliasSymbols, colLocusGroup, colChromosome,
	} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var records []domain.HGNCRecord
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

		records = append(records, domain.HGNCRecord{
			HGNCID:          field(colHGNCID),
			ApprovedSymbol:  field(colApprovedSymbol),
			PreviousSymbols: splitSymbolList(field(colPreviousSymbols)),
			AliasSymbols:    splitSymbolList(field(colAliasSymbols)),
			LocusGroup:      field(colLocusGroup),
			Chromosome:      field(colChromosome),
		})
	}

	return records, nil
}

// splitSymbolList splits a comma-joined symbol field, trimming whitespace and
// surrounding quotes. Empty fields yield nil.
func splitSymbolList(field string) []string {
	field = strings.Trim(field, `"`)
	if field == "" {
		return nil
	}

	var symbols []string
	for _, part := range strings.Split(field, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	return symbols
}

func newTSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}
