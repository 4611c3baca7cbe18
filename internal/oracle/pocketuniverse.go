package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"riskScope/internal/model"
)

const DefaultPocketUniverseURL = "https://api.pocketuniverse.app/v1"

// PocketUniverse serves real-volume estimates for pairs.
type PocketUniverse struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPocketUniverse returns nil when apiKey is empty; the volume check then
// runs on local analysis only.
func NewPocketUniverse(baseURL, apiKey string, client *http.Client) *PocketUniverse {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultPocketUniverseURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &PocketUniverse{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type pairAnalysisResponse struct {
	RealVolumeRatio *float64 `json:"realVolumeRatio"`
	Flags           []string `json:"flags"`
}

// PairAnalysis fetches the real-volume ratio and flags for a pair. A body
// without a ratio is a failed call, not a zero estimate.
func (p *PocketUniverse) PairAnalysis(ctx context.Context, pairAddress string) (model.VolumeReport, error) {
	endpoint := fmt.Sprintf("%s/pairs/%s/analysis", p.baseURL, url.PathEscape(pairAddress))
	header := http.Header{}
	header.Set("Authorization", "Bearer "+p.apiKey)
	header.Set("Content-Type", "application/json")

	var resp pairAnalysisResponse
	if err := getJSON(ctx, p.client, "pocket universe analysis", endpoint, header, &resp); err != nil {
		return model.VolumeReport{}, err
	}
	if resp.RealVolumeRatio == nil {
		return model.VolumeReport{}, &NetworkError{Op: "pocket universe analysis", URL: endpoint, Err: errors.New("response has no realVolumeRatio")}
	}

	report := model.VolumeReport{RealVolumeRatio: *resp.RealVolumeRatio, Flags: resp.Flags}
	if report.Flags == nil {
		report.Flags = []string{}
	}
	return report, nil
}
