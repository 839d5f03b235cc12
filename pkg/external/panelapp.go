package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// PanelAppClient handles interactions with the PanelApp API for signed-off
// panels. Responses are cached per panel ID for the duration of a run, since
// the same panel is frequently referenced by multiple indications.
type PanelAppClient struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	cache      *lru.Cache[string, *SignedOffPanel]
	logger     *logrus.Logger
}

// PanelAppConfig represents configuration for the PanelApp API client
type PanelAppConfig struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit int           `json:"rate_limit"` // requests per second
	CacheSize int           `json:"cache_size"`
}

// SignedOffPanel is one signed-off PanelApp panel with its gene content.
type SignedOffPanel struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Genes   []PanelGene `json:"genes"`
}

// PanelGene is one gene on a panel.
type PanelGene struct {
	HGNCID     string `json:"hgnc_id"`
	Symbol     string `json:"gene_symbol"`
	Confidence string `json:"confidence_level"`
}

// panelResponse mirrors the PanelApp panel detail JSON.
type panelResponse struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Genes   []struct {
		GeneData struct {
			HGNCID     string `json:"hgnc_id"`
			GeneSymbol string `json:"gene_symbol"`
		} `json:"gene_data"`
		ConfidenceLevel string `json:"confidence_level"`
	} `json:"genes"`
}

// panelListResponse mirrors one page of the signed-off panel listing.
type panelListResponse struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results []panelResponse `json:"results"`
}

// NewPanelAppClient creates a new PanelApp API client
func NewPanelAppClient(config PanelAppConfig, logger *logrus.Logger) (*PanelAppClient, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://panelapp.genomicsengland.co.uk/api/v1"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 3
	}
	if config.CacheSize == 0 {
		config.CacheSize = 512
	}

	cache, err := lru.New[string, *SignedOffPanel](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create panel cache: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "panelapp",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state change")
		},
	})

	return &PanelAppClient{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		breaker:   breaker,
		cache:     cache,
		logger:    logger,
	}, nil
}

// GetPanel retrieves one signed-off panel by its PanelApp ID, serving repeat
// lookups from the run cache.
func (c *PanelAppClient) GetPanel(ctx context.Context, panelID string) (*SignedOffPanel, error) {
	if panel, ok := c.cache.Get(panelID); ok {
		return panel, nil
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchPanel(ctx, fmt.Sprintf("%s/panels/%s/?format=json", c.baseURL, panelID))
	})
	if err != nil {
		return nil, fmt.Errorf("fetching panel %s: %w", panelID, err)
	}

	panel := result.(*SignedOffPanel)
	c.cache.Add(panelID, panel)

	c.logger.WithFields(logrus.Fields{
		"panel_id": panelID,
		"version":  panel.Version,
		"genes":    len(panel.Genes),
	}).Debug("Fetched panel from PanelApp")

	return panel, nil
}

// GetGenes returns the HGNC identifiers of a panel's current gene list,
// implementing the panel source contract of the reconciliation core.
func (c *PanelAppClient) GetGenes(ctx context.Context, panelID string) ([]string, error) {
	panel, err := c.GetPanel(ctx, panelID)
	if err != nil {
		return nil, err
	}

	genes := make([]string, 0, len(panel.Genes))
	for _, gene := range panel.Genes {
		genes = append(genes, gene.HGNCID)
	}
	return genes, nil
}

// GetVersion returns a panel's version string, used only for display.
func (c *PanelAppClient) GetVersion(ctx context.Context, panelID string) (string, error) {
	panel, err := c.GetPanel(ctx, panelID)
	if err != nil {
		return "", err
	}
	return panel.Version, nil
}

// PreloadSignedOff walks the paginated signed-off panel listing once and
// populates the run cache, so per-panel expansion needs no further requests.
func (c *PanelAppClient) PreloadSignedOff(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/panels/signedoff/?format=json", c.baseURL)
	loaded := 0

	for url != "" {
		if err := c.rateLimit.Wait(ctx); err != nil {
			return loaded, fmt.Errorf("rate limit wait failed: %w", err)
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchPage(ctx, url)
		})
		if err != nil {
			return loaded, fmt.Errorf("fetching signed-off panel listing: %w", err)
		}

		page := result.(*panelListResponse)
		for _, raw := range page.Results {
			panel := toPanel(raw)
			c.cache.Add(panel.ID, panel)
			loaded++
		}

		url = ""
		if page.Next != nil {
			url = *page.Next
		}
	}

	c.logger.WithField("panels", loaded).Info("Preloaded signed-off panels")
	return loaded, nil
}

func (c *PanelAppClient) fetchPanel(ctx context.Context, url string) (*SignedOffPanel, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw panelResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return toPanel(raw), nil
}

func (c *PanelAppClient) fetchPage(ctx context.Context, url string) (*panelListResponse, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var page panelListResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return &page, nil
}

func (c *PanelAppClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "test-directory-reconciler/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PanelApp API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func toPanel(raw panelResponse) *SignedOffPanel {
	panel := &SignedOffPanel{
		ID:      raw.ID.String(),
		Name:    raw.Name,
		Version: raw.Version,
	}
	for _, gene := range raw.Genes {
		panel.Genes = append(panel.Genes, PanelGene{
			HGNCID:     gene.GeneData.HGNCID,
			Symbol:     gene.GeneData.GeneSymbol,
			Confidence: gene.ConfidenceLevel,
		})
	}
	return panel
}
