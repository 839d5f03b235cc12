package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

// LocusClassifier decides, per HGNC identifier, whether a gene is in scope
// for gene-set comparison. RNA-class genes and mitochondrial genes are out of
// scope because the lab has no transcripts for them, as are the genes on the
// configured no-transcript list.
type LocusClassifier struct {
	ref          domain.ReferenceStore
	noTranscript map[string]struct{}
	logger       *logrus.Logger
}

// NewLocusClassifier creates a new locus classifier
func NewLocusClassifier(ref domain.ReferenceStore, noTranscriptGenes map[string]struct{}, logger *logrus.Logger) *LocusClassifier {
	return &LocusClassifier{
		ref:          ref,
		noTranscript: noTranscriptGenes,
		logger:       logger,
	}
}

// Classify returns the in-scope flag for a gene identifier, memoised in the
// per-run status cache. The reference lookup runs at most once per distinct
// identifier for a whole reconciliation run.
func (c *LocusClassifier) Classify(id string, status *domain.LocusStatus) bool {
	if inScope, ok := status.Lookup(id); ok {
		return inScope
	}

	inScope := c.classify(id)
	status.Set(id, inScope)
	return inScope
}

func (c *LocusClassifier) classify(id string) bool {
	if _, ok := c.noTranscript[id]; ok {
		return false
	}

	rec, ok := c.ref.ByID(id)
	if !ok {
		c.logger.WithField("hgnc_id", id).Warn("Gene identifier absent from HGNC dump, excluding from comparison")
		return false
	}

	if strings.Contains(rec.LocusGroup, "RNA") {
		return false
	}
	if rec.Chromosome == "mitochondria" {
		return false
	}

	return true
}

// FilterInScope returns the subset of a gene set marked in scope, classifying
// through the shared status cache.
func (c *LocusClassifier) FilterInScope(genes map[string]struct{}, status *domain.LocusStatus) map[string]struct{} {
	filtered := make(map[string]struct{}, len(genes))
	for gene := range genes {
		if c.Classify(gene, status) {
			filtered[gene] = struct{}{}
		}
	}
	return filtered
}
