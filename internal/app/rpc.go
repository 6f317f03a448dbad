package app

import (
	"time"

	"github.com/example/executor/src/executor/chainadapter/metrics"
	"github.com/example/executor/src/executor/chainadapter/rpc"
)

// rpcTimeout bounds a single JSON-RPC round trip to a configured chain.
const rpcTimeout = 15 * time.Second

// newHTTPRPCClient builds the shared HTTPRPCClient + MetricsRPCClient stack
// every JSON-RPC-speaking adapter (EVM, SVM) is wired against, so every
// adapter's RPC calls show up in the same ChainMetrics recorder the worker
// reports through.
func newHTTPRPCClient(endpoint string, m metrics.ChainMetrics) (rpc.RPCClient, error) {
	client, err := rpc.NewHTTPRPCClient([]string{endpoint}, rpcTimeout, nil)
	if err != nil {
		return nil, err
	}
	return rpc.NewMetricsRPCClient(client, m), nil
}
