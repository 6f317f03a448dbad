// Package ethereum implements the EVM chain adapter: RFE discovery via
// event log decoding and destination-chain delivery of VAA-v1 and
// Modular-Messaging requests.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/chainadapter/rpc"
	"github.com/example/executor/src/executor/codec"
)

// requestForExecutionABI is the canonical RFE event signature (spec §4.3,
// §6.1): RequestForExecution(address,uint256,uint16,bytes32,address,bytes,bytes,bytes).
const requestForExecutionABI = `[{"anonymous":false,"inputs":[` +
	`{"indexed":false,"name":"quoterAddress","type":"address"},` +
	`{"indexed":false,"name":"amtPaid","type":"uint256"},` +
	`{"indexed":false,"name":"dstChain","type":"uint16"},` +
	`{"indexed":false,"name":"dstAddr","type":"bytes32"},` +
	`{"indexed":false,"name":"refundAddr","type":"address"},` +
	`{"indexed":false,"name":"signedQuoteBytes","type":"bytes"},` +
	`{"indexed":false,"name":"requestBytes","type":"bytes"},` +
	`{"indexed":false,"name":"relayInstructionsBytes","type":"bytes"}` +
	`],"name":"RequestForExecution","type":"event"}]`

var rfeEventABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(requestForExecutionABI))
	if err != nil {
		panic(fmt.Sprintf("ethereum: invalid RequestForExecution ABI: %v", err))
	}
	rfeEventABI = parsed
}

type rfeEventFields struct {
	QuoterAddress          common.Address
	AmtPaid                *big.Int
	DstChain               uint16
	DstAddr                [32]byte
	RefundAddr             common.Address
	SignedQuoteBytes       []byte
	RequestBytes           []byte
	RelayInstructionsBytes []byte
}

// Adapter implements chainadapter.Adapter for EVM-family chains.
type Adapter struct {
	chainID           uint16
	executorAddress   common.Address
	rpcHelper         *RPCHelper
	gasPriceEstimator *GasPriceEstimator
	deliveryBuilder   *DeliveryBuilder
	relaySigner       *RelaySigner
	minConfirmations  int
}

// NewAdapter builds an EVM adapter for the given logical chain id and
// EIP-155 chain id, watching executorAddressHex for RFE events and signing
// delivery transactions with relaySigner.
func NewAdapter(chainID uint16, evmChainID int64, executorAddressHex string, client rpc.RPCClient, relaySigner *RelaySigner) *Adapter {
	rpcHelper := NewRPCHelper(client)
	return &Adapter{
		chainID:           chainID,
		executorAddress:   common.HexToAddress(executorAddressHex),
		rpcHelper:         rpcHelper,
		gasPriceEstimator: NewGasPriceEstimator(rpcHelper),
		deliveryBuilder:   NewDeliveryBuilder(evmChainID),
		relaySigner:       relaySigner,
		minConfirmations:  1,
	}
}

func (a *Adapter) ChainID() uint16 { return a.chainID }

func (a *Adapter) RuntimeFamily() string { return "evm" }

func (a *Adapter) Capabilities() chainadapter.Capabilities {
	return chainadapter.Capabilities{
		ChainID:          a.chainID,
		RuntimeFamily:    "evm",
		SupportsVAAv1:    true,
		SupportsModular:  true,
		MinConfirmations: a.minConfirmations,
	}
}

func (a *Adapter) GetGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := a.gasPriceEstimator.GasPrice(ctx)
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}
	return price, nil
}

// GetRequest decodes the RFE whose locator is txHash(32) ‖ logIndex(256-bit)
// (spec §4.3). It returns (nil, nil) -- not an error -- when the
// transaction has no matching, non-removed, executor-emitted log.
func (a *Adapter) GetRequest(ctx context.Context, executorAddress []byte, locator []byte) (*chainadapter.RFE, error) {
	if len(locator) != 64 {
		return nil, chainadapter.NewTerminalError("ERR_BAD_LOCATOR", "evm locator must be 64 bytes (txHash || logIndex)", nil)
	}
	txHash := common.BytesToHash(locator[:32]).Hex()

	var wantLogIndex uint256.Int
	wantLogIndex.SetBytes(locator[32:])

	wantAddr := common.BytesToAddress(executorAddress)

	receipt, err := a.rpcHelper.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}

	eventID := rfeEventABI.Events["RequestForExecution"].ID

	for _, lg := range receipt.Logs {
		if lg.Removed {
			continue
		}
		if !strings.EqualFold(lg.Address, wantAddr.Hex()) {
			continue
		}
		if len(lg.Topics) == 0 || !strings.EqualFold(lg.Topics[0], eventID.Hex()) {
			continue
		}

		logIdx, err := decodeHexUint64(lg.LogIndex)
		if err != nil {
			continue
		}
		if !wantLogIndex.IsUint64() || wantLogIndex.Uint64() != logIdx {
			continue
		}

		data, err := hexutil.Decode(lg.Data)
		if err != nil {
			return nil, chainadapter.NewTerminalError("ERR_RFE_DECODE", "failed to decode RFE log data", err)
		}

		var fields rfeEventFields
		if err := rfeEventABI.UnpackIntoInterface(&fields, "RequestForExecution", data); err != nil {
			return nil, chainadapter.NewTerminalError("ERR_RFE_DECODE", "failed to unpack RFE event", err)
		}

		return &chainadapter.RFE{
			QuoterAddress:          [20]byte(fields.QuoterAddress),
			AmtPaid:                fields.AmtPaid,
			DstChain:               fields.DstChain,
			DstAddr:                fields.DstAddr,
			RefundAddr:             addressTo32(fields.RefundAddr),
			SignedQuoteBytes:       fields.SignedQuoteBytes,
			RequestBytes:           fields.RequestBytes,
			RelayInstructionsBytes: fields.RelayInstructionsBytes,
		}, nil
	}

	return nil, nil
}

// RelayVAAv1 submits the destination-chain call completing a VAA-v1
// delivery: to=rfe.DstAddr, data=attestedBytes, gas/value summed from the
// RFE's relay instructions.
func (a *Adapter) RelayVAAv1(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest, attestedBytes []byte) ([]string, error) {
	return a.deliver(ctx, rfe, attestedBytes)
}

// RelayModular submits the destination-chain call completing a
// Modular-Messaging delivery, forwarding the RFE's own request payload as
// calldata.
func (a *Adapter) RelayModular(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest) ([]string, error) {
	return a.deliver(ctx, rfe, rfe.RequestBytes)
}

func (a *Adapter) deliver(ctx context.Context, rfe *chainadapter.RFE, data []byte) ([]string, error) {
	instructions, err := codec.DecodeRelayInstructions(rfe.RelayInstructionsBytes)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BAD_INSTRUCTIONS", "failed to decode relay instructions", err)
	}
	gasLimit, msgValue, err := codec.TotalGasLimitAndMsgValue(instructions)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BAD_INSTRUCTIONS", "failed to sum relay instructions", err)
	}

	to := common.BytesToAddress(rfe.DstAddr[12:])

	if _, err := a.rpcHelper.CallContract(ctx, a.relaySigner.Address(), to.Hex(), msgValue, data); err != nil {
		return nil, err
	}

	nonce, err := a.rpcHelper.GetTransactionCount(ctx, a.relaySigner.Address())
	if err != nil {
		return nil, err
	}

	maxFeePerGas, err := a.gasPriceEstimator.MaxFeePerGas(ctx)
	if err != nil {
		return nil, chainadapter.ClassifyDiagnostic(chainadapter.ErrCodeRPCUnavailable, err.Error(), err)
	}

	if !gasLimit.IsUint64() {
		return nil, chainadapter.NewTerminalError("ERR_BAD_INSTRUCTIONS", "summed gas limit overflows uint64", nil)
	}

	tx := a.deliveryBuilder.Build(to, data, msgValue, gasLimit.Uint64(), nonce, maxFeePerGas)

	signedTx, err := a.relaySigner.SignTransaction(tx)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_SIGN_FAILED", "failed to sign delivery transaction", err)
	}

	rawTx, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_SIGN_FAILED", "failed to encode signed transaction", err)
	}

	txHash, err := a.rpcHelper.SendRawTransaction(ctx, hexutil.Encode(rawTx))
	if err != nil {
		return nil, err
	}

	return []string{txHash}, nil
}

func addressTo32(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], addr.Bytes())
	return out
}
