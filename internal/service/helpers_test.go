package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/test-directory-reconciler/internal/domain"
)

// testLogger returns a logger silenced for tests.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

// fakeReference is an in-memory domain.ReferenceStore that counts lookups so
// tests can assert on caching behaviour.
type fakeReference struct {
	records     []domain.HGNCRecord
	byIDCalls   map[string]int
	byApproved  map[string]domain.HGNCRecord
	byPrevious  map[string][]domain.HGNCRecord
	byAlias     map[string][]domain.HGNCRecord
	byID        map[string]domain.HGNCRecord
}

func newFakeReference(records ...domain.HGNCRecord) *fakeReference {
	f := &fakeReference{
		records:    records,
		byIDCalls:  make(map[string]int),
		byApproved: make(map[string]domain.HGNCRecord),
		byPrevious: make(map[string][]domain.HGNCRecord),
		byAlias:    make(map[string][]domain.HGNCRecord),
		byID:       make(map[string]domain.HGNCRecord),
	}
	for _, rec := range records {
		f.byApproved[rec.ApprovedSymbol] = rec
		f.byID[rec.HGNCID] = rec
		for _, prev := range rec.PreviousSymbols {
			f.byPrevious[prev] = append(f.byPrevious[prev], rec)
		}
		for _, alias := range rec.AliasSymbols {
			f.byAlias[alias] = append(f.byAlias[alias], rec)
		}
	}
	return f
}

func (f *fakeReference) ByApprovedSymbol(symbol string) (domain.HGNCRecord, bool) {
	rec, ok := f.byApproved[symbol]
	return rec, ok
}

func (f *fakeReference) ByPreviousSymbol(symbol string) []domain.HGNCRecord {
	return f.byPrevious[symbol]
}

func (f *fakeReference) ByAliasSymbol(symbol string) []domain.HGNCRecord {
	return f.byAlias[symbol]
}

func (f *fakeReference) ByID(id string) (domain.HGNCRecord, bool) {
	f.byIDCalls[id]++
	rec, ok := f.byID[id]
	return rec, ok
}

// proteinCoding builds a protein-coding, non-mitochondrial HGNC record, the
// common case in fixtures.
func proteinCoding(id, symbol string) domain.HGNCRecord {
	return domain.HGNCRecord{
		HGNCID:         id,
		ApprovedSymbol: symbol,
		LocusGroup:     "protein-coding gene",
		Chromosome:     "1",
	}
}

// MockPanelSource is a mock implementation of the domain.PanelSource interface
type MockPanelSource struct {
	mock.Mock
}

func (m *MockPanelSource) GetGenes(ctx context.Context, panelID string) ([]string, error) {
	args := m.Called(ctx, panelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPanelSource) GetVersion(ctx context.Context, panelID string) (string, error) {
	args := m.Called(ctx, panelID)
	return args.String(0), args.Error(1)
}
