// Package stellar implements a capability-negotiation stub adapter for the
// Stellar runtime family. Stellar's transaction model (sequence numbers,
// operation lists, XDR envelopes) has no RFE-event analogue in this
// deployment, so this adapter answers getGasPrice honestly (via
// stellar/go's horizonclient base fee) and reports SupportsVAAv1/
// SupportsModular as false.
package stellar

import (
	"context"
	"math/big"

	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/strkey"

	"github.com/example/executor/src/executor/chainadapter"
)

// horizon reports fee-stats figures as decimal strings.

// Adapter is a stub chainadapter.Adapter for Stellar-family chains.
type Adapter struct {
	chainID uint16
	client  *horizonclient.Client
}

// NewAdapter builds a Stellar stub adapter backed by a Horizon client.
func NewAdapter(chainID uint16, client *horizonclient.Client) *Adapter {
	return &Adapter{chainID: chainID, client: client}
}

func (a *Adapter) ChainID() uint16 { return a.chainID }

func (a *Adapter) RuntimeFamily() string { return "stellar" }

func (a *Adapter) Capabilities() chainadapter.Capabilities {
	return chainadapter.Capabilities{
		ChainID:          a.chainID,
		RuntimeFamily:    "stellar",
		SupportsVAAv1:    false,
		SupportsModular:  false,
		MinConfirmations: 1,
	}
}

// GetGasPrice returns Horizon's current recommended base fee per operation,
// in stroops.
func (a *Adapter) GetGasPrice(ctx context.Context) (*big.Int, error) {
	feeStats, err := a.client.FeeStats()
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}
	fee, ok := new(big.Int).SetString(feeStats.LastLedgerBaseFee, 10)
	if !ok {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "invalid fee stats base fee: "+feeStats.LastLedgerBaseFee, nil)
	}
	return fee, nil
}

// GetRequest is unimplemented: this deployment does not decode Stellar
// operations for RFE records. Reports not-found rather than erroring.
func (a *Adapter) GetRequest(ctx context.Context, executorAddress []byte, locator []byte) (*chainadapter.RFE, error) {
	return nil, nil
}

func (a *Adapter) RelayVAAv1(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest, attestedBytes []byte) ([]string, error) {
	return nil, chainadapter.NewUnsupportedError("relayVAAv1", "stellar")
}

func (a *Adapter) RelayModular(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest) ([]string, error) {
	return nil, chainadapter.NewUnsupportedError("relayModular", "stellar")
}

// addressFromPublicKey mirrors the teacher's DeriveStellarAddress for
// components that need to render a Stellar "G..." address from a raw
// Ed25519 public key.
func addressFromPublicKey(pubKey [32]byte) (string, error) {
	return strkey.Encode(strkey.VersionByteAccountID, pubKey[:])
}
