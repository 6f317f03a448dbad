package httpapi

import "github.com/example/executor/src/executor/priceoracle"

// ChainConfig is the subset of the per-chain configuration table (spec
// §6.3, `chainId -> {rpc, baseFee, payeeAddress, gasPriceDecimals,
// nativeDecimals, executorAddress, runtimeFamily, signingKeyRef}`) the HTTP
// surface needs. internal/config populates and owns the authoritative
// table; this package only depends on the shape, not the loader, to avoid
// a layering cycle.
type ChainConfig struct {
	ChainID          uint16
	BaseFee          uint64
	PayeeAddress     [32]byte
	GasPriceDecimals uint8
	NativeDecimals   uint8
	ExecutorAddress  []byte
	RuntimeFamily    string
	AssetID          priceoracle.AssetID
}
