package httpapi

import (
	"encoding/json"
	"math/big"
)

// bigString marshals a *big.Int as a decimal-string JSON value (spec §6.2
// "Integer bigints serialized as decimal strings") instead of a bare JSON
// number, which would silently lose precision for values above 2^53 in a
// generic JSON consumer.
type bigString struct {
	v *big.Int
}

func bigStr(v *big.Int) bigString {
	if v == nil {
		v = big.NewInt(0)
	}
	return bigString{v: v}
}

func (b bigString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.v.String())
}

// maxUint64 is the exclusive upper bound spec §4.6 sets for srcPrice/dstPrice
// ("range-checked against (0, 2^64)"); this package applies the same bound
// to the fetched gas price before it is narrowed into a SignedQuote's
// uint64 fields.
var maxUint64 = new(big.Int).Lsh(big.NewInt(1), 64)

func fitsUint64(v *big.Int) bool {
	return v != nil && v.Sign() > 0 && v.Cmp(maxUint64) < 0
}

type quoteResponse struct {
	SignedQuote string `json:"signedQuote"`
}

type estimateResponse struct {
	Quote    string    `json:"quote"`
	Estimate bigString `json:"estimate"`
}

type requestBytesResponse struct {
	Bytes string `json:"bytes"`
}

type rfeResponse struct {
	QuoterAddress          string    `json:"quoterAddress"`
	AmtPaid                bigString `json:"amtPaid"`
	DstChain               uint16    `json:"dstChain"`
	DstAddr                string    `json:"dstAddr"`
	RefundAddr             string    `json:"refundAddr"`
	SignedQuoteBytes       string    `json:"signedQuoteBytes"`
	RequestBytes           string    `json:"requestBytes"`
	RelayInstructionsBytes string    `json:"relayInstructionsBytes"`
	Timestamp              uint64    `json:"timestamp"`
}

type instructionResponse struct {
	Prefix string `json:"prefix"`
}

type statusResponse struct {
	RequestForExecution rfeResponse         `json:"requestForExecution"`
	Instruction         instructionResponse `json:"instruction"`
	Quote               string              `json:"quote"`
	Estimate            bigString           `json:"estimate"`
	Status              string              `json:"status"`
}
