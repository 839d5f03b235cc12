package domain

import "context"

// HGNCRecord is one row of the HGNC reference dump.
type HGNCRecord struct {
	HGNCID          string   `json:"hgnc_id"`
	ApprovedSymbol  string   `json:"approved_symbol"`
	PreviousSymbols []string `json:"previous_symbols,omitempty"`
	AliasSymbols    []string `json:"alias_symbols,omitempty"`
	LocusGroup      string   `json:"locus_group"`
	Chromosome      string   `json:"chromosome"`
}

// ReferenceStore is the indexed view over the HGNC dump used by symbol
// resolution and locus classification. Implementations are immutable after
// construction.
type ReferenceStore interface {
	// ByApprovedSymbol returns the record whose approved symbol matches
	// exactly (case-sensitive, whole token).
	ByApprovedSymbol(symbol string) (HGNCRecord, bool)

	// ByPreviousSymbol returns every record listing the symbol among its
	// previous symbols.
	ByPreviousSymbol(symbol string) []HGNCRecord

	// ByAliasSymbol returns every record listing the symbol among its
	// alias symbols.
	ByAliasSymbol(symbol string) []HGNCRecord

	// ByID returns the record for an HGNC identifier.
	ByID(id string) (HGNCRecord, bool)
}

// PanelSource is the external panel-lookup collaborator. An error from either
// method for a non-blacklisted panel ID is fatal to the run.
type PanelSource interface {
	// GetGenes returns the HGNC identifiers of the panel's current gene list.
	GetGenes(ctx context.Context, panelID string) ([]string, error)

	// GetVersion returns the panel's version string, used only for display.
	GetVersion(ctx context.Context, panelID string) (string, error)
}
