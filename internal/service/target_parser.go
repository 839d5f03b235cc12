package service

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

var (
	// panelMention matches parenthesized runs of digits, ampersands and
	// spaces, e.g. "(700)" or "(525 & 486)".
	panelMention = regexp.MustCompile(`\([0-9& ]+\)`)

	// geneMention matches maximal runs shaped like gene symbols.
	geneMention = regexp.MustCompile(`[A-Z][A-Z0-9-]+`)

	// panelWithCommas matches prose panel mentions carrying commas inside
	// parentheses, which must not be split on the list separator.
	panelWithCommas = regexp.MustCompile(`\([^)]*,[^)]*\)`)

	// dashArtifacts maps the mojibake left by a Windows-1252 round trip of
	// en/em dashes, plus the dashes themselves, to a plain hyphen so
	// gene-symbol matching is not broken by split tokens.
	dashArtifacts = strings.NewReplacer(
		"\u00e2\u20ac\u201c", "-", // en dash read back as cp1252
		"\u00e2\u20ac\u201d", "-", // em dash read back as cp1252
		"\u2013", "-",
		"\u2014", "-",
	)
)

// TargetParser splits a free-text Target/Genes field into panel-identifier
// references and gene-symbol references resolved through the symbol resolver.
type TargetParser struct {
	resolver *SymbolResolver
	logger   *logrus.Logger
}

// NewTargetParser creates a new target parser
func NewTargetParser(resolver *SymbolResolver, logger *logrus.Logger) *TargetParser {
	return &TargetParser{resolver: resolver, logger: logger}
}

// ParseTarget extracts panel references and gene references from a target
// field. Ordering matches first-seen order in the source text and duplicates
// are kept; deduplication happens when gene sets are built downstream.
// Elements that resolve to neither a panel nor a gene are retained as
// unresolved references so they can be reported for manual review.
func (p *TargetParser) ParseTarget(text string) ([]string, []domain.GeneReference) {
	text = dashArtifacts.Replace(text)

	if mentions := panelMention.FindAllString(text, -1); len(mentions) > 0 {
		var panelRefs []string
		for _, mention := range mentions {
			panelRefs = append(panelRefs, splitPanelIDs(mention)...)
		}
		return panelRefs, nil
	}

	return nil, p.parseGeneList(text)
}

// ResolveRecords returns a copy of the test records with PanelRefs and
// GeneRefs populated from their target text. Records are immutable once
// resolved.
func (p *TargetParser) ResolveRecords(records []domain.TestRecord) []domain.TestRecord {
	resolved := make([]domain.TestRecord, len(records))
	for i, record := range records {
		record.PanelRefs, record.GeneRefs = p.ParseTarget(record.TargetText)
		resolved[i] = record
	}
	return resolved
}

// splitPanelIDs strips the parentheses from a panel mention and splits
// ampersand-joined IDs into individual references.
func splitPanelIDs(mention string) []string {
	cleaned := strings.Trim(mention, "()")

	var ids []string
	for _, part := range strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == '&' || r == ' '
	}) {
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// parseGeneList applies list-aware handling to a target field with no panel
// reference. The field is split on semicolons when present, otherwise commas;
// tokens joined by the word "and" within one element are split and resolved
// individually as a last-resort rescue.
func (p *TargetParser) parseGeneList(text string) []domain.GeneReference {
	elements := splitList(text)

	// A leading element that is not gene-shaped next to commas inside
	// parentheses means the separators belong to one prose panel mention,
	// not a gene list.
	if len(elements) > 1 && !geneSymbolShape.MatchString(elements[0]) && panelWithCommas.MatchString(text) {
		p.logger.WithField("target", text).Warn("Target looks like an unindexed panel mention, please check manually")
		return []domain.GeneReference{{
			Symbol:     strings.TrimSpace(text),
			MatchedVia: domain.MatchUnresolved,
		}}
	}

	var refs []domain.GeneReference
	for _, element := range elements {
		tokens := geneTokens(element)

		if len(tokens) == 0 {
			p.logger.WithField("element", element).Warn("Unidentifiable target element, please check manually")
			refs = append(refs, domain.GeneReference{
				Symbol:     element,
				MatchedVia: domain.MatchUnresolved,
			})
			continue
		}

		for _, token := range tokens {
			refs = append(refs, p.resolver.Resolve(token))
		}
	}

	return refs
}

// splitList splits on the separator that actually structures the field:
// semicolons when present, commas otherwise.
func splitList(text string) []string {
	sep := ","
	if strings.Contains(text, ";") {
		sep = ";"
	}

	var elements []string
	for _, part := range strings.Split(text, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			elements = append(elements, trimmed)
		}
	}
	return elements
}

// geneTokens extracts candidate gene symbols from one list element,
// splitting "and"-joined pairs first.
func geneTokens(element string) []string {
	var tokens []string
	for _, piece := range strings.Split(element, " and ") {
		tokens = append(tokens, geneMention.FindAllString(piece, -1)...)
	}
	return tokens
}
