// Package ethereum - gas price sampling and EIP-1559 fee cap for the EVM adapter
package ethereum

import (
	"context"
	"math/big"
)

// GasPriceEstimator samples the destination chain's current gas price with a
// single eth_gasPrice call, for getGasPrice (spec §4.3) and for pricing the
// adapter's own relay-delivery transactions.
type GasPriceEstimator struct {
	rpcHelper *RPCHelper
}

// NewGasPriceEstimator creates a gas price estimator backed by rpcHelper.
func NewGasPriceEstimator(rpcHelper *RPCHelper) *GasPriceEstimator {
	return &GasPriceEstimator{rpcHelper: rpcHelper}
}

// fallbackGasPriceWei is used when the eth_gasPrice RPC fails; chosen conservatively high so a relay submission errs toward
// overpaying rather than stalling under a transient RPC outage.
var fallbackGasPriceWei = big.NewInt(50_000_000_000) // 50 Gwei

// GasPrice returns the current destination-chain gas price in wei: the
// legacy eth_gasPrice value when available, which already folds base fee
// and typical priority fee together on most EVM RPC providers.
func (e *GasPriceEstimator) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := e.rpcHelper.GetGasPrice(ctx)
	if err != nil {
		return new(big.Int).Set(fallbackGasPriceWei), nil
	}
	return price, nil
}

// MaxFeePerGas returns a fee cap suitable for an EIP-1559 relay-delivery
// transaction: double the sampled gas price, leaving headroom for a base
// fee spike between submission and inclusion.
func (e *GasPriceEstimator) MaxFeePerGas(ctx context.Context) (*big.Int, error) {
	price, err := e.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Mul(price, big.NewInt(2)), nil
}
