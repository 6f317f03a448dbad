package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/executor/src/executor/chainadapter"
)

// VAAFetcher retrieves the attested bytes for an ERV1 request from the
// guardian network so relayVAAv1 can be called with them (spec §4.3
// relayVAAv1's attestedBytes parameter). Signing/validating VAAs is out of
// scope (spec §1 Non-goals); this only transports whatever the guardian
// network already attested.
type VAAFetcher interface {
	FetchSignedVAA(ctx context.Context, emitterChain uint16, emitterAddress [32]byte, sequence uint64) ([]byte, error)
}

// GuardianVAAFetcher fetches attested VAA bytes from a Wormhole-shaped
// guardian HTTP API (GUARDIAN_URL), the convention the RFE's ERV1 payload
// (emitterChain/emitterAddress/sequence) already assumes per spec.md §6.1.
type GuardianVAAFetcher struct {
	baseURL string
	client  *http.Client
}

// NewGuardianVAAFetcher builds a fetcher against baseURL (GUARDIAN_URL).
func NewGuardianVAAFetcher(baseURL string, client *http.Client) *GuardianVAAFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GuardianVAAFetcher{baseURL: baseURL, client: client}
}

type guardianVAAResponse struct {
	VAABytes string `json:"vaaBytes"`
}

// FetchSignedVAA calls GET {baseURL}/v1/signed_vaa/{emitterChain}/{emitterAddressHex}/{sequence}
// and base64-decodes the returned vaaBytes field.
func (f *GuardianVAAFetcher) FetchSignedVAA(ctx context.Context, emitterChain uint16, emitterAddress [32]byte, sequence uint64) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/signed_vaa/%d/%x/%d", f.baseURL, emitterChain, emitterAddress, sequence)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_VAA_REQUEST", "failed to build guardian request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, chainadapter.NewTransientError("ERR_VAA_UNAVAILABLE", "guardian request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, chainadapter.NewTransientError("ERR_VAA_UNAVAILABLE", "VAA not yet available", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, chainadapter.NewTransientError("ERR_VAA_UNAVAILABLE", fmt.Sprintf("guardian returned status %d", resp.StatusCode), nil)
	}

	var body guardianVAAResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_VAA_PARSE", "failed to decode guardian response", err)
	}

	raw, err := base64.StdEncoding.DecodeString(body.VAABytes)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_VAA_PARSE", "failed to decode vaaBytes", err)
	}
	return raw, nil
}
