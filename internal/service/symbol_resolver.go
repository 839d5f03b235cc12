package service

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

// geneSymbolShape matches whole tokens that look like HGNC gene symbols:
// uppercase letters followed by alphanumerics or hyphens. Tokens failing the
// shape are prose fragments and skip the previous/alias lookup entirely.
var geneSymbolShape = regexp.MustCompile(`^[A-Z][A-Z0-9-]+$`)

// SymbolResolver resolves raw gene-symbol tokens to HGNC identifiers through
// a layered lookup: approved symbol, then previous symbols, then aliases.
// Resolution is a pure lookup over the immutable reference store.
type SymbolResolver struct {
	ref    domain.ReferenceStore
	logger *logrus.Logger
}

// NewSymbolResolver creates a new symbol resolver
func NewSymbolResolver(ref domain.ReferenceStore, logger *logrus.Logger) *SymbolResolver {
	return &SymbolResolver{ref: ref, logger: logger}
}

// Resolve maps a raw token to a GeneReference. A token that never resolves is
// returned with an empty HGNCID rather than an error: prose fragments that
// slip past text splitting are expected input, and callers filter unresolved
// references before building gene sets.
func (r *SymbolResolver) Resolve(symbol string) domain.GeneReference {
	if rec, ok := r.ref.ByApprovedSymbol(symbol); ok {
		return domain.GeneReference{
			Symbol:     symbol,
			HGNCID:     rec.HGNCID,
			MatchedVia: domain.MatchExact,
		}
	}

	if !geneSymbolShape.MatchString(symbol) {
		return unresolved(symbol, false)
	}

	prevRecs := r.ref.ByPreviousSymbol(symbol)
	aliasRecs := r.ref.ByAliasSymbol(symbol)

	switch {
	case len(prevRecs) == 0 && len(aliasRecs) == 0:
		return unresolved(symbol, false)

	case len(prevRecs) == 1 && len(aliasRecs) == 0:
		r.logger.WithFields(logrus.Fields{
			"symbol":  symbol,
			"hgnc_id": prevRecs[0].HGNCID,
		}).Debug("Resolved via previous symbol")
		return domain.GeneReference{
			Symbol:     symbol,
			HGNCID:     prevRecs[0].HGNCID,
			MatchedVia: domain.MatchPreviousSymbol,
		}

	case len(prevRecs) == 0 && len(aliasRecs) == 1:
		r.logger.WithFields(logrus.Fields{
			"symbol":  symbol,
			"hgnc_id": aliasRecs[0].HGNCID,
		}).Debug("Resolved via alias symbol")
		return domain.GeneReference{
			Symbol:     symbol,
			HGNCID:     aliasRecs[0].HGNCID,
			MatchedVia: domain.MatchAliasSymbol,
		}
	}

	// Matches in both lists, or multiple matches in one list. Surface the
	// identifier only when every matched record agrees on a single HGNC ID;
	// otherwise leave it unresolved and flag for manual review.
	candidates := make(map[string]struct{})
	for _, rec := range prevRecs {
		candidates[rec.HGNCID] = struct{}{}
	}
	for _, rec := range aliasRecs {
		candidates[rec.HGNCID] = struct{}{}
	}

	if len(candidates) == 1 {
		var id string
		for candidate := range candidates {
			id = candidate
		}

		via := domain.MatchAliasSymbol
		if len(prevRecs) > 0 {
			via = domain.MatchPreviousSymbol
		}

		r.logger.WithFields(logrus.Fields{
			"symbol":  symbol,
			"hgnc_id": id,
		}).Warn("Symbol matched multiple previous/alias records with one candidate ID")

		return domain.GeneReference{
			Symbol:     symbol,
			HGNCID:     id,
			MatchedVia: via,
			Ambiguous:  true,
		}
	}

	r.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"candidates": len(candidates),
	}).Warn("Ambiguous symbol, please check manually")

	return unresolved(symbol, true)
}

func unresolved(symbol string, ambiguous bool) domain.GeneReference {
	return domain.GeneReference{
		Symbol:     symbol,
		MatchedVia: domain.MatchUnresolved,
		Ambiguous:  ambiguous,
	}
}
