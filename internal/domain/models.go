package domain

// Core Enums and Types

// MatchProvenance records how a raw gene symbol was resolved to an HGNC ID
type MatchProvenance string

const (
	MatchExact          MatchProvenance = "exact"
	MatchPreviousSymbol MatchProvenance = "previous-symbol"
	MatchAliasSymbol    MatchProvenance = "alias-symbol"
	MatchUnresolved     MatchProvenance = "unresolved"
)

// Outcome represents the result of matching a genepanels indication against
// the test directory
type Outcome string

const (
	OutcomeIdentical Outcome = "IDENTICAL"
	OutcomeRemoved   Outcome = "REMOVED"
	OutcomeReplaced  Outcome = "REPLACED"
)

// Input Models

// TestRecord is one row of the test directory. PanelRefs and GeneRefs are
// populated by target resolution and must not be mutated afterwards.
type TestRecord struct {
	Code           string          `json:"code"`
	IndicationName string          `json:"indication_name"`
	TargetText     string          `json:"target_text"`
	TestMethod     string          `json:"test_method"`
	PanelRefs      []string        `json:"panel_refs,omitempty"`
	GeneRefs       []GeneReference `json:"gene_refs,omitempty"`
}

// GenePanelEntry is one row of the authoritative genepanels source. Multiple
// entries share an IndicationKey; the set of their Gene values is the
// authoritative gene set for that indication.
type GenePanelEntry struct {
	IndicationKey string `json:"indication_key"`
	PanelName     string `json:"panel_name"`
	Gene          string `json:"gene"`
	PanelAppID    string `json:"panelapp_id,omitempty"`
}

// GeneReference is a resolved gene identifier plus resolution provenance.
// HGNCID is empty when the symbol could not be resolved; callers must filter
// empty identifiers before building gene sets.
type GeneReference struct {
	Symbol    string          `json:"symbol"`
	HGNCID    string          `json:"hgnc_id,omitempty"`
	MatchedVia MatchProvenance `json:"matched_via"`
	Ambiguous bool            `json:"ambiguous,omitempty"`
}

// Resolved reports whether the reference carries a usable identifier.
func (r GeneReference) Resolved() bool {
	return r.HGNCID != ""
}

// Output Models

// ReconciliationRecord is the output of matching one genepanels indication
// against the test directory. Gene collections stay as sorted slices; joining
// into display strings is the report renderer's job. Matched* fields and
// ResolvedTestGenes are only populated when a test-directory counterpart was
// found (never for OutcomeRemoved).
type ReconciliationRecord struct {
	IndicationKey       string   `json:"indication_key"`
	PanelNames          []string `json:"panel_names"`
	AuthoritativeGenes  []string `json:"authoritative_genes"`
	MatchedTestCode     string   `json:"matched_test_code,omitempty"`
	MatchedTargetText   string   `json:"matched_target_text,omitempty"`
	MatchedPanelVersion string   `json:"matched_panel_version,omitempty"`
	ResolvedTestGenes   []string `json:"resolved_test_genes,omitempty"`
	RemovedGenes        []string `json:"removed_genes,omitempty"`
	AddedGenes          []string `json:"added_genes,omitempty"`
	Outcome             Outcome  `json:"outcome"`
}

// TestMethodFinding reports a test-directory method absent from the
// configured list of NGS test methods.
type TestMethodFinding struct {
	Code       string `json:"code"`
	TestMethod string `json:"test_method"`
}

// GenePresence is the outcome of checking one gene identifier against the
// panel database.
type GenePresence struct {
	Gene                  string `json:"gene"`
	InDatabase            bool   `json:"in_database"`
	HasClinicalTranscript bool   `json:"has_clinical_transcript"`
}

// LocusStatus caches the in-scope decision per gene identifier for one
// reconciliation run. It is built incrementally by the locus classifier and
// never reclassifies an identifier it has already seen.
type LocusStatus struct {
	byID map[string]bool
}

// NewLocusStatus returns an empty per-run locus cache.
func NewLocusStatus() *LocusStatus {
	return &LocusStatus{byID: make(map[string]bool)}
}

// Lookup returns the cached in-scope flag and whether the identifier has been
// classified yet.
func (s *LocusStatus) Lookup(id string) (inScope, ok bool) {
	inScope, ok = s.byID[id]
	return inScope, ok
}

// Set records the in-scope decision for an identifier.
func (s *LocusStatus) Set(id string, inScope bool) {
	s.byID[id] = inScope
}

// Len returns the number of classified identifiers.
func (s *LocusStatus) Len() int {
	return len(s.byID)
}
