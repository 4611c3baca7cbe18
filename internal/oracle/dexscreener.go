package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultDexScreenerURL = "https://api.dexscreener.com/latest/dex/search"

// DexScreener is the market data gateway.
type DexScreener struct {
	searchURL  string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewDexScreener(searchURL string, client *http.Client, maxRetries int, backoff time.Duration, logger *zap.Logger) *DexScreener {
	if searchURL == "" {
		searchURL = DefaultDexScreenerURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DexScreener{
		searchURL:  strings.TrimRight(searchURL, "/"),
		client:     client,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

type searchResponse struct {
	SchemaVersion string            `json:"schemaVersion"`
	Pairs         []json.RawMessage `json:"pairs"`
}

// Search returns the raw pair payloads matching a free-text query. Payloads
// are left undecoded so one malformed pair does not spoil the rest.
func (d *DexScreener) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	endpoint := d.searchURL + "?" + url.Values{"q": {query}}.Encode()

	var resp searchResponse
	err := withRetry(ctx, d.maxRetries, d.backoff, func(ctx context.Context) error {
		resp = searchResponse{}
		err := getJSON(ctx, d.client, "dexscreener search", endpoint, nil, &resp)
		if err != nil {
			d.logger.Debug("search attempt failed", zap.String("query", query), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Pairs, nil
}
