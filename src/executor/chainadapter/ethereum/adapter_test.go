package ethereum

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/codec"
)

var executorAddr = common.HexToAddress("0xE000000000000000000000000000000000000e")

func encodeRFELogData(t *testing.T, quoter, refund common.Address, amtPaid *big.Int, dstChain uint16, dstAddr [32]byte, signedQuote, req, instr []byte) []byte {
	t.Helper()
	args := rfeEventABI.Events["RequestForExecution"].Inputs
	packed, err := args.Pack(quoter, amtPaid, dstChain, dstAddr, refund, signedQuote, req, instr)
	require.NoError(t, err)
	return packed
}

func relayInstructionsBytes(t *testing.T) []byte {
	t.Helper()
	b, err := codec.EncodeRelayInstructions([]codec.RelayInstruction{
		&codec.GasInstruction{GasLimit: big.NewInt(21000), MsgValue: big.NewInt(0)},
	})
	require.NoError(t, err)
	return b
}

func TestAdapter_GetRequest_DecodesMatchingLog(t *testing.T) {
	var dstAddr [32]byte
	copy(dstAddr[12:], common.HexToAddress("0xD000000000000000000000000000000000000d").Bytes())

	data := encodeRFELogData(t, common.HexToAddress("0xAAAA000000000000000000000000000000AAAA"),
		common.HexToAddress("0xBBBB000000000000000000000000000000BBBB"),
		big.NewInt(5000), 2, dstAddr, []byte("quote"), []byte("req"), relayInstructionsBytes(t))

	eventID := rfeEventABI.Events["RequestForExecution"].ID

	client := newMockRPCClient()
	client.setResult("eth_getTransactionReceipt", Receipt{
		TransactionHash: "0xabc",
		Status:          "0x1",
		Logs: []Log{
			{
				Address:  executorAddr.Hex(),
				Topics:   []string{eventID.Hex()},
				Data:     hexutil.Encode(data),
				LogIndex: "0x3",
				Removed:  false,
			},
		},
	})

	adapter := NewAdapter(2, 2, executorAddr.Hex(), client, nil)

	var locator [64]byte
	copy(locator[0:32], common.HexToHash("0xabc").Bytes())
	locator[63] = 0x03

	rfe, err := adapter.GetRequest(context.Background(), executorAddr.Bytes(), locator[:])
	require.NoError(t, err)
	require.NotNil(t, rfe)
	assert.Equal(t, uint16(2), rfe.DstChain)
	assert.Equal(t, big.NewInt(5000), rfe.AmtPaid)
	assert.Equal(t, []byte("quote"), rfe.SignedQuoteBytes)
}

func TestAdapter_GetRequest_NilWhenLogIndexMismatch(t *testing.T) {
	var dstAddr [32]byte
	data := encodeRFELogData(t, common.Address{}, common.Address{}, big.NewInt(0), 1, dstAddr, nil, nil, relayInstructionsBytes(t))
	eventID := rfeEventABI.Events["RequestForExecution"].ID

	client := newMockRPCClient()
	client.setResult("eth_getTransactionReceipt", Receipt{
		TransactionHash: "0xabc",
		Logs: []Log{
			{Address: executorAddr.Hex(), Topics: []string{eventID.Hex()}, Data: hexutil.Encode(data), LogIndex: "0x1"},
		},
	})

	adapter := NewAdapter(1, 1, executorAddr.Hex(), client, nil)

	var locator [64]byte
	locator[63] = 0x09 // looking for logIndex 9, log has index 1

	rfe, err := adapter.GetRequest(context.Background(), executorAddr.Bytes(), locator[:])
	require.NoError(t, err)
	assert.Nil(t, rfe)
}

func TestAdapter_GetRequest_NilWhenReceiptMissing(t *testing.T) {
	client := newMockRPCClient()
	client.responses["eth_getTransactionReceipt"] = []byte("null")

	adapter := NewAdapter(1, 1, executorAddr.Hex(), client, nil)

	locator := make([]byte, 64)
	rfe, err := adapter.GetRequest(context.Background(), executorAddr.Bytes(), locator)
	require.NoError(t, err)
	assert.Nil(t, rfe)
}

func TestAdapter_RelayVAAv1_SubmitsSignedDeliveryTransaction(t *testing.T) {
	privKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	relaySigner, err := NewRelaySignerFromPrivateKey(crypto.FromECDSA(privKey), 1)
	require.NoError(t, err)

	client := newMockRPCClient()
	client.setResult("eth_call", "0x")
	client.setResult("eth_getTransactionCount", "0x2")
	client.setResult("eth_gasPrice", "0x3b9aca00")
	client.setResult("eth_sendRawTransaction", "0xfeed")

	adapter := NewAdapter(1, 1, executorAddr.Hex(), client, relaySigner)

	var dstAddr [32]byte
	copy(dstAddr[12:], common.HexToAddress("0xD000000000000000000000000000000000000d").Bytes())

	rfe := &chainadapter.RFE{
		DstChain:               1,
		DstAddr:                dstAddr,
		RelayInstructionsBytes: relayInstructionsBytes(t),
	}

	ids, err := adapter.RelayVAAv1(context.Background(), rfe, nil, []byte("attested-vaa"))
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "0xfeed", ids[0])
}

func TestAdapter_RelayModular_ForwardsRequestBytesAsCalldata(t *testing.T) {
	privKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	relaySigner, err := NewRelaySignerFromPrivateKey(crypto.FromECDSA(privKey), 1)
	require.NoError(t, err)

	client := newMockRPCClient()
	client.setResult("eth_call", "0x")
	client.setResult("eth_getTransactionCount", "0x0")
	client.setResult("eth_gasPrice", "0x3b9aca00")
	client.setResult("eth_sendRawTransaction", "0xc0ffee")

	adapter := NewAdapter(1, 1, executorAddr.Hex(), client, relaySigner)

	var dstAddr [32]byte
	copy(dstAddr[12:], common.HexToAddress("0xD000000000000000000000000000000000000d").Bytes())

	rfe := &chainadapter.RFE{
		DstChain:               1,
		DstAddr:                dstAddr,
		RequestBytes:           []byte("ntt-request"),
		RelayInstructionsBytes: relayInstructionsBytes(t),
	}

	ids, err := adapter.RelayModular(context.Background(), rfe, nil)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "0xc0ffee", ids[0])
}
