// Package tezos implements a capability-negotiation stub adapter for the
// Tezos runtime family. RFE discovery and delivery on Tezos require decoding
// Michelson big-map storage and building manager operations through tzgo's
// codec/signer packages -- out of scope for this deployment -- so this
// adapter answers getGasPrice honestly (via tzgo's RPC client) and reports
// SupportsVAAv1/SupportsModular as false, letting the worker route Tezos
// requests to UnsupportedError instead of silently dropping them.
package tezos

import (
	"context"
	"math/big"

	"blockwatch.cc/tzgo/rpc"
	"blockwatch.cc/tzgo/tezos"

	"github.com/example/executor/src/executor/chainadapter"
)

// Adapter is a stub chainadapter.Adapter for Tezos-family chains.
type Adapter struct {
	chainID uint16
	client  *rpc.Client
}

// NewAdapter builds a Tezos stub adapter backed by an already-connected
// tzgo RPC client (see rpc.NewClient in blockwatch.cc/tzgo/rpc).
func NewAdapter(chainID uint16, client *rpc.Client) *Adapter {
	return &Adapter{chainID: chainID, client: client}
}

func (a *Adapter) ChainID() uint16 { return a.chainID }

func (a *Adapter) RuntimeFamily() string { return "tezos" }

func (a *Adapter) Capabilities() chainadapter.Capabilities {
	return chainadapter.Capabilities{
		ChainID:          a.chainID,
		RuntimeFamily:    "tezos",
		SupportsVAAv1:    false,
		SupportsModular:  false,
		MinConfirmations: 2,
	}
}

// GetGasPrice returns the network's current minimal flat operation fee, in
// mutez, read from the active protocol's constants.
func (a *Adapter) GetGasPrice(ctx context.Context) (*big.Int, error) {
	params, err := a.client.GetParams(ctx, rpc.Head)
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}
	return big.NewInt(params.MinimalFeeMutez), nil
}

// GetRequest is unimplemented: this deployment does not decode Tezos
// contract storage for RFE records. Reports not-found rather than erroring
// so callers treat it the same as "not observed yet".
func (a *Adapter) GetRequest(ctx context.Context, executorAddress []byte, locator []byte) (*chainadapter.RFE, error) {
	return nil, nil
}

func (a *Adapter) RelayVAAv1(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest, attestedBytes []byte) ([]string, error) {
	return nil, chainadapter.NewUnsupportedError("relayVAAv1", "tezos")
}

func (a *Adapter) RelayModular(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest) ([]string, error) {
	return nil, chainadapter.NewUnsupportedError("relayModular", "tezos")
}

// addressFromEd25519 mirrors the teacher's DeriveTezosAddress (tz1 from a
// raw Ed25519 public key) for components that need to display or validate a
// configured Tezos refund/executor address.
func addressFromEd25519(pubKey []byte) string {
	key := tezos.NewKey(tezos.KeyTypeEd25519, pubKey)
	return key.Address().String()
}
