package priceoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSource fetches USD prices from a configurable price-feed endpoint
// shaped like `GET {baseURL}?ids=a,b,c` -> `{"a": "1234.5", "b": "0.002"}`
// (a plain decimal-string map, not the exchange-specific response format of
// any one real provider). Price-feed integration itself is unspecified;
// this is a thin, deliberately minimal Source implementation rather than a
// hardcoded provider SDK.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds an HTTPSource against baseURL. A nil client gets a
// sane default timeout, matching the worker's GuardianVAAFetcher pattern.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{baseURL: baseURL, client: client}
}

func (s *HTTPSource) FetchUSDPrices(ctx context.Context, ids []AssetID) (map[AssetID]*big.Int, error) {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	u := s.baseURL + "?ids=" + url.QueryEscape(strings.Join(names, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("priceoracle: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("priceoracle: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("priceoracle: feed returned status %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("priceoracle: decode response: %w", err)
	}

	// priceDecimals (10 fractional decimals) matches the SignedQuote
	// srcPrice/dstPrice scale (spec §3, invariant Q2); the feed's decimal
	// strings are parsed as a fixed-point float and rescaled here so
	// callers never deal in floats.
	out := make(map[AssetID]*big.Int, len(ids))
	for _, id := range ids {
		priceStr, ok := raw[string(id)]
		if !ok {
			continue
		}
		scaled, err := parseDecimalFixedPoint(priceStr, 10)
		if err != nil {
			continue
		}
		out[id] = scaled
	}
	return out, nil
}

// parseDecimalFixedPoint parses a decimal string like "1234.5678" into an
// integer scaled by 10^decimals, truncating any extra fractional digits.
func parseDecimalFixedPoint(s string, decimals int) (*big.Int, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	for len(frac) < decimals {
		frac += "0"
	}
	combined := whole + frac
	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("priceoracle: %q is not a valid decimal", s)
	}
	return v, nil
}
