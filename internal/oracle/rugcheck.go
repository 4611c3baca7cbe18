package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"riskScope/internal/model"
)

const DefaultRugCheckURL = "https://api.rugcheck.xyz/v1"

// RugCheck serves contract and supply analysis for tokens.
type RugCheck struct {
	baseURL string
	client  *http.Client
}

func NewRugCheck(baseURL string, client *http.Client) *RugCheck {
	if baseURL == "" {
		baseURL = DefaultRugCheckURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &RugCheck{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *RugCheck) tokenURL(chainID, token, resource string) string {
	return fmt.Sprintf("%s/tokens/%s/%s/%s", r.baseURL, url.PathEscape(chainID), url.PathEscape(token), resource)
}

// ContractAnalysis fetches status, warnings and deployer for a token.
func (r *RugCheck) ContractAnalysis(ctx context.Context, chainID, token string) (model.ContractReport, error) {
	var report model.ContractReport
	if err := getJSON(ctx, r.client, "rugcheck analysis", r.tokenURL(chainID, token, "analysis"), nil, &report); err != nil {
		return model.ContractReport{}, err
	}
	return report, nil
}

type supplyPayload struct {
	TotalSupply         flexFloat `json:"totalSupply"`
	CirculatingSupply   flexFloat `json:"circulatingSupply"`
	HolderConcentration flexFloat `json:"holderConcentration"`
	TopHolders          []struct {
		Address    string    `json:"address"`
		Percentage flexFloat `json:"percentage"`
	} `json:"topHolders"`
}

// SupplyAnalysis fetches supply figures and the top holders for a token.
// A null payload yields a nil report.
func (r *RugCheck) SupplyAnalysis(ctx context.Context, chainID, token string) (*model.SupplyReport, error) {
	var payload *supplyPayload
	if err := getJSON(ctx, r.client, "rugcheck supply", r.tokenURL(chainID, token, "supply"), nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	report := &model.SupplyReport{
		TotalSupply:         float64(payload.TotalSupply),
		CirculatingSupply:   float64(payload.CirculatingSupply),
		HolderConcentration: float64(payload.HolderConcentration),
		TopHolders:          make([]model.Holder, 0, len(payload.TopHolders)),
	}
	for _, h := range payload.TopHolders {
		report.TopHolders = append(report.TopHolders, model.Holder{Address: h.Address, Percentage: float64(h.Percentage)})
	}
	return report, nil
}

// flexFloat accepts a JSON number or a numeric string. Large supplies are
// often sent as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse number %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
