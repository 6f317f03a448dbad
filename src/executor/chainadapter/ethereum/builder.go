// Package ethereum - relay-delivery transaction construction
package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DeliveryBuilder constructs the EIP-1559 transaction that completes an
// RFE's delivery on the destination chain: a call into rfe.DstAddr carrying
// calldata (the attested payload for relayVAAv1, or the modular-messaging
// payload for relayModular) and the gas limit / native value the relay
// instructions specify (spec §4.3).
type DeliveryBuilder struct {
	chainID *big.Int
}

// NewDeliveryBuilder creates a delivery transaction builder bound to chainID.
func NewDeliveryBuilder(chainID int64) *DeliveryBuilder {
	return &DeliveryBuilder{chainID: big.NewInt(chainID)}
}

// Build assembles an unsigned EIP-1559 transaction calling to with data,
// forwarding value, at gasLimit, nonce and fee cap maxFeePerGas. The
// priority fee is capped to a quarter of maxFeePerGas so GasFeeCap >=
// GasTipCap always holds.
func (b *DeliveryBuilder) Build(to common.Address, data []byte, value *big.Int, gasLimit uint64, nonce uint64, maxFeePerGas *big.Int) *types.Transaction {
	if value == nil {
		value = big.NewInt(0)
	}

	priorityFee := new(big.Int).Div(maxFeePerGas, big.NewInt(4))
	if priorityFee.Sign() == 0 {
		priorityFee = new(big.Int).Set(maxFeePerGas)
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasFeeCap: maxFeePerGas,
		GasTipCap: priorityFee,
		Gas:       gasLimit,
		To:        &to,
		Value:     value,
		Data:      data,
	})
}
