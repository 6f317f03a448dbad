// Package ethereum - RPC helper functions for the EVM chain adapter
package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/chainadapter/rpc"
)

// RPCHelper provides typed wrappers around the JSON-RPC calls the EVM
// adapter needs: gas price, transaction receipts (for RFE discovery),
// nonce lookup and raw-transaction submission (for relay delivery).
type RPCHelper struct {
	client rpc.RPCClient
}

// NewRPCHelper creates a new EVM RPC helper.
func NewRPCHelper(client rpc.RPCClient) *RPCHelper {
	return &RPCHelper{client: client}
}

// Log is a single EVM event log entry as returned by eth_getTransactionReceipt.
type Log struct {
	Address  string   `json:"address"`
	Topics   []string `json:"topics"`
	Data     string   `json:"data"`
	LogIndex string   `json:"logIndex"`
	Removed  bool     `json:"removed"`
}

// Receipt is the subset of eth_getTransactionReceipt this adapter reads.
type Receipt struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
	Logs            []Log  `json:"logs"`
}

// GetGasPrice returns the current gas price via eth_gasPrice.
func (r *RPCHelper) GetGasPrice(ctx context.Context) (*big.Int, error) {
	result, err := r.client.Call(ctx, "eth_gasPrice", nil)
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var priceHex string
	if err := json.Unmarshal(result, &priceHex); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse eth_gasPrice result", err)
	}

	price, err := hexutil.DecodeBig(priceHex)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to decode gas price hex", err)
	}
	return price, nil
}

// GetTransactionReceipt fetches the receipt for txHash, or nil if the
// transaction is not yet mined.
func (r *RPCHelper) GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	result, err := r.client.Call(ctx, "eth_getTransactionReceipt", []interface{}{txHash})
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}
	if string(result) == "null" {
		return nil, nil
	}

	var receipt Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse transaction receipt", err)
	}
	return &receipt, nil
}

// GetTransactionCount retrieves the pending nonce for address, used when
// submitting a relay delivery transaction.
func (r *RPCHelper) GetTransactionCount(ctx context.Context, address string) (uint64, error) {
	result, err := r.client.Call(ctx, "eth_getTransactionCount", []interface{}{address, "pending"})
	if err != nil {
		return 0, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var nonceHex string
	if err := json.Unmarshal(result, &nonceHex); err != nil {
		return 0, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse nonce", err)
	}

	nonce, err := hexutil.DecodeUint64(nonceHex)
	if err != nil {
		return 0, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to decode nonce hex", err)
	}
	return nonce, nil
}

// SendRawTransaction submits a signed, RLP-encoded transaction and returns
// its transaction hash.
func (r *RPCHelper) SendRawTransaction(ctx context.Context, rawTxHex string) (string, error) {
	result, err := r.client.Call(ctx, "eth_sendRawTransaction", []interface{}{rawTxHex})
	if err != nil {
		return "", chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse sendRawTransaction result", err)
	}
	return txHash, nil
}

// CallContract performs an eth_call against to with the given calldata,
// used to simulate a relay delivery before submitting it.
func (r *RPCHelper) CallContract(ctx context.Context, from, to string, value *big.Int, data []byte) ([]byte, error) {
	txObj := map[string]interface{}{
		"to":   to,
		"data": hexutil.Encode(data),
	}
	if from != "" {
		txObj["from"] = from
	}
	if value != nil && value.Sign() > 0 {
		txObj["value"] = hexutil.EncodeBig(value)
	}

	result, err := r.client.Call(ctx, "eth_call", []interface{}{txObj, "latest"})
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodePreflightFailed, err.Error(), err)
	}

	var resultHex string
	if err := json.Unmarshal(result, &resultHex); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse eth_call result", err)
	}
	return hexutil.Decode(resultHex)
}

func decodeHexUint64(s string) (uint64, error) {
	v, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, fmt.Errorf("decode hex uint64 %q: %w", s, err)
	}
	return v, nil
}
