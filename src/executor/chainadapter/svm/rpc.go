package svm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"math/big"

	"github.com/mr-tron/base58"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/chainadapter/rpc"
)

// RPCHelper wraps the JSON-RPC calls the SVM adapter needs: priority-fee
// sampling (getGasPrice), transaction lookup (getRequest) and submission
// (relayVAAv1/relayModular).
type RPCHelper struct {
	client rpc.RPCClient
}

// NewRPCHelper creates a new SVM RPC helper.
func NewRPCHelper(client rpc.RPCClient) *RPCHelper {
	return &RPCHelper{client: client}
}

type prioritizationFeeSample struct {
	Slot              uint64 `json:"slot"`
	PrioritizationFee uint64 `json:"prioritizationFee"`
}

// GetRecentPrioritizationFees returns the maximum recently-observed
// per-compute-unit priority fee, in micro-lamports, as the chain's current
// gas price (spec §4.3 getGasPrice).
func (r *RPCHelper) GetRecentPrioritizationFees(ctx context.Context) (*big.Int, error) {
	result, err := r.client.Call(ctx, "getRecentPrioritizationFees", []interface{}{[]string{}})
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var samples []prioritizationFeeSample
	if err := json.Unmarshal(result, &samples); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse prioritization fee samples", err)
	}

	max := uint64(0)
	for _, s := range samples {
		if s.PrioritizationFee > max {
			max = s.PrioritizationFee
		}
	}
	return new(big.Int).SetUint64(max), nil
}

type transactionInstruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"` // base58-encoded
}

type transactionMessage struct {
	AccountKeys  []string                 `json:"accountKeys"`
	Instructions []transactionInstruction `json:"instructions"`
}

type transactionEnvelope struct {
	Message transactionMessage `json:"message"`
}

type transactionMeta struct {
	LogMessages []string        `json:"logMessages"`
	Err         json.RawMessage `json:"err"`
}

type getTransactionResult struct {
	Transaction transactionEnvelope `json:"transaction"`
	Meta        transactionMeta     `json:"meta"`
}

// GetTransaction fetches a confirmed transaction by its base58-encoded
// signature, or nil if it is not yet available.
func (r *RPCHelper) GetTransaction(ctx context.Context, signatureBase58 string) (*getTransactionResult, error) {
	params := []interface{}{
		signatureBase58,
		map[string]interface{}{"encoding": "json", "maxSupportedTransactionVersion": 0},
	}
	result, err := r.client.Call(ctx, "getTransaction", params)
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}
	if string(result) == "null" {
		return nil, nil
	}

	var tx getTransactionResult
	if err := json.Unmarshal(result, &tx); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse getTransaction result", err)
	}
	return &tx, nil
}

// GetLatestBlockhash fetches the blockhash to attach to a new transaction.
func (r *RPCHelper) GetLatestBlockhash(ctx context.Context) (string, error) {
	result, err := r.client.Call(ctx, "getLatestBlockhash", []interface{}{map[string]interface{}{"commitment": "finalized"}})
	if err != nil {
		return "", chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse getLatestBlockhash result", err)
	}
	return resp.Value.Blockhash, nil
}

// SendRawTransaction submits a wire-encoded (serialized) transaction and
// returns its base58 signature.
func (r *RPCHelper) SendRawTransaction(ctx context.Context, rawTx []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(rawTx)
	params := []interface{}{encoded, map[string]interface{}{"encoding": "base64"}}

	result, err := r.client.Call(ctx, "sendTransaction", params)
	if err != nil {
		return "", chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	var sig string
	if err := json.Unmarshal(result, &sig); err != nil {
		return "", chainadapter.NewTerminalError("ERR_RPC_PARSE", "failed to parse sendTransaction result", err)
	}
	return sig, nil
}

func decodeBase58(s string) ([]byte, error) {
	return base58.Decode(s)
}
