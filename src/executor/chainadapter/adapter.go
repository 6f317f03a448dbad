// Package chainadapter defines the unified interface chain-family adapters
// implement for the Executor service. Each runtime family (EVM, SVM, and so
// on) gets exactly one adapter; upper layers never branch on chain family
// themselves.
package chainadapter

import (
	"context"
	"math/big"
)

// Adapter is the capability set an Executor chain adapter exposes.
// Implementations MUST be safe for concurrent use: the relay worker and the
// HTTP surface may call the same adapter instance from different goroutines.
type Adapter interface {
	// ChainID returns the logical chain identifier this adapter serves.
	ChainID() uint16

	// RuntimeFamily names the chain-family this adapter implements
	// ("evm", "svm", "move-aptos", "move-sui", "clarity", ...).
	RuntimeFamily() string

	// Capabilities reports which of the optional delivery methods this
	// adapter supports. getGasPrice and getRequest are mandatory for every
	// adapter; relayVAAv1/relayModular may be unimplemented for a family,
	// in which case the corresponding method returns an UnsupportedError.
	Capabilities() Capabilities

	// GetGasPrice returns the current destination-chain gas price in the
	// chain's native smallest unit.
	GetGasPrice(ctx context.Context) (*big.Int, error)

	// GetRequest fetches the RFE identified by a chain-local locator
	// (the bytes following the 16-bit chainId in a status request id).
	// Returns (nil, nil) when the locator resolves to a transaction with
	// no matching executor-emitted event, a removed log, or a mismatched
	// locator -- "not found" is not an error.
	GetRequest(ctx context.Context, executorAddress []byte, locator []byte) (*RFE, error)

	// RelayVAAv1 submits the destination-chain transaction(s) completing
	// delivery of a VAA-v1 (ERV1) request. Returns the produced
	// transaction ids in submission order.
	RelayVAAv1(ctx context.Context, rfe *RFE, req DecodedRequest, attestedBytes []byte) ([]string, error)

	// RelayModular submits the destination-chain transaction(s) completing
	// a Modular-Messaging delivery. Returns UnsupportedError if this
	// family has no Modular-Messaging delivery path.
	RelayModular(ctx context.Context, rfe *RFE, req DecodedRequest) ([]string, error)
}

// Capabilities reports which optional Adapter methods are implemented.
type Capabilities struct {
	ChainID          uint16
	RuntimeFamily    string
	SupportsVAAv1    bool
	SupportsModular  bool
	MinConfirmations int
}

// RFE is the Request-For-Execution record as surfaced to adapters (spec §3,
// §6.1 "RFE event fields").
type RFE struct {
	QuoterAddress          [20]byte
	AmtPaid                *big.Int
	DstChain               uint16
	DstAddr                [32]byte
	RefundAddr             [32]byte
	SignedQuoteBytes       []byte
	RequestBytes           []byte
	RelayInstructionsBytes []byte
	Timestamp              uint64
}

// DecodedRequest is implemented by each request payload variant
// (ERV1/ERN1/ERC1/ERC2); see package codec.
type DecodedRequest interface {
	// Prefix returns the 4-byte wire discriminator, e.g. "ERV1".
	Prefix() string
}
