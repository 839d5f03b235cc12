package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/test-directory-reconciler/internal/domain"
)

// PanelExpander expands panel identifiers into gene identifier sets via the
// external panel source, applying the blacklist of panels known to be
// unreachable (retired or in development).
type PanelExpander struct {
	source    domain.PanelSource
	blacklist map[string]struct{}
	logger    *logrus.Logger
}

// NewPanelExpander creates a new panel expander
func NewPanelExpander(source domain.PanelSource, blacklist map[string]struct{}, logger *logrus.Logger) *PanelExpander {
	return &PanelExpander{
		source:    source,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Expand returns the set of HGNC identifiers on a panel. Blacklisted panels
// expand to the empty set silently; a lookup failure for any other panel is
// fatal to the run, since silent omission would corrupt the comparison.
func (e *PanelExpander) Expand(ctx context.Context, panelID string) (map[string]struct{}, error) {
	if e.blacklisted(panelID) {
		e.logger.WithField("panel_id", panelID).Debug("Skipping blacklisted panel")
		return map[string]struct{}{}, nil
	}

	genes, err := e.source.GetGenes(ctx, panelID)
	if err != nil {
		return nil, fmt.Errorf("expanding panel %s: %w: %v", panelID, domain.ErrPanelUnavailable, err)
	}

	set := make(map[string]struct{}, len(genes))
	for _, gene := range genes {
		set[gene] = struct{}{}
	}
	return set, nil
}

// JoinVersions joins the version strings of all non-blacklisted panels, in
// order, for display on a test record. A record with no non-blacklisted
// panel (e.g. a gene-only test) yields an empty string.
func (e *PanelExpander) JoinVersions(ctx context.Context, panelIDs []string) (string, error) {
	var versions []string
	for _, panelID := range panelIDs {
		if e.blacklisted(panelID) {
			continue
		}

		version, err := e.source.GetVersion(ctx, panelID)
		if err != nil {
			return "", fmt.Errorf("fetching version of panel %s: %w: %v", panelID, domain.ErrPanelUnavailable, err)
		}
		versions = append(versions, version)
	}

	return strings.Join(versions, ", "), nil
}

func (e *PanelExpander) blacklisted(panelID string) bool {
	_, ok := e.blacklist[panelID]
	return ok
}
