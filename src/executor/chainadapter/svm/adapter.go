package svm

import (
	"context"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/chainadapter/rpc"
	"github.com/example/executor/src/executor/codec"
)

// Adapter implements chainadapter.Adapter for SVM-family chains (Solana).
// relayModular is unimplemented: Modular Messaging's uniform
// (chain, address, sequence, payload) interface has no canonical program
// layout on SVM in this deployment, so it returns UnsupportedError (spec
// §4.3 "may return UnsupportedError if not yet implemented for that
// runtime").
type Adapter struct {
	chainID         uint16
	executorProgram solana.PublicKey
	rpcHelper       *RPCHelper
	relayKey        solana.PrivateKey
}

// NewAdapter builds an SVM adapter watching executorProgram for RFE
// instructions and signing delivery transactions with relayKey.
func NewAdapter(chainID uint16, executorProgram solana.PublicKey, client rpc.RPCClient, relayKey solana.PrivateKey) *Adapter {
	return &Adapter{
		chainID:         chainID,
		executorProgram: executorProgram,
		rpcHelper:       NewRPCHelper(client),
		relayKey:        relayKey,
	}
}

func (a *Adapter) ChainID() uint16 { return a.chainID }

func (a *Adapter) RuntimeFamily() string { return "svm" }

func (a *Adapter) Capabilities() chainadapter.Capabilities {
	return chainadapter.Capabilities{
		ChainID:          a.chainID,
		RuntimeFamily:    "svm",
		SupportsVAAv1:    true,
		SupportsModular:  false,
		MinConfirmations: 1,
	}
}

func (a *Adapter) GetGasPrice(ctx context.Context) (*big.Int, error) {
	return a.rpcHelper.GetRecentPrioritizationFees(ctx)
}

// GetRequest decodes the RFE from the instruction the executor program was
// invoked with in the transaction identified by locator (a 64-byte
// signature). Returns (nil, nil) when the transaction is not found or no
// instruction in it targets executorAddress.
func (a *Adapter) GetRequest(ctx context.Context, executorAddress []byte, locator []byte) (*chainadapter.RFE, error) {
	sig, err := decodeLocator(locator)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BAD_LOCATOR", err.Error(), err)
	}

	wantProgram := base58.Encode(executorAddress)

	tx, err := a.rpcHelper.GetTransaction(ctx, base58.Encode(sig[:]))
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}
	if len(tx.Meta.Err) > 0 && string(tx.Meta.Err) != "null" {
		return nil, nil
	}

	keys := tx.Transaction.Message.AccountKeys
	for _, instr := range tx.Transaction.Message.Instructions {
		if instr.ProgramIDIndex < 0 || instr.ProgramIDIndex >= len(keys) {
			continue
		}
		if keys[instr.ProgramIDIndex] != wantProgram {
			continue
		}

		data, err := decodeBase58(instr.Data)
		if err != nil {
			continue
		}
		rfe, err := decodeRFEInstructionData(data)
		if err != nil {
			continue
		}
		return rfe, nil
	}

	return nil, nil
}

// RelayVAAv1 submits a transaction invoking the program at rfe.DstAddr
// (interpreted directly as a 32-byte Solana program id) with attestedBytes
// as instruction data.
func (a *Adapter) RelayVAAv1(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest, attestedBytes []byte) ([]string, error) {
	return a.deliver(ctx, rfe, attestedBytes)
}

// RelayModular is unsupported on this SVM deployment.
func (a *Adapter) RelayModular(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest) ([]string, error) {
	return nil, chainadapter.NewUnsupportedError("relayModular", "svm")
}

func (a *Adapter) deliver(ctx context.Context, rfe *chainadapter.RFE, data []byte) ([]string, error) {
	instructions, err := codec.DecodeRelayInstructions(rfe.RelayInstructionsBytes)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BAD_INSTRUCTIONS", "failed to decode relay instructions", err)
	}
	if _, _, err := codec.TotalGasLimitAndMsgValue(instructions); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BAD_INSTRUCTIONS", "failed to sum relay instructions", err)
	}

	dstProgram := solana.PublicKeyFromBytes(rfe.DstAddr[:])

	blockhash, err := a.rpcHelper.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	recentBlockhash, err := solana.HashFromBase58(blockhash)
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_RPC_PARSE", "invalid blockhash", err)
	}

	instruction := solana.NewInstruction(dstProgram, solana.AccountMetaSlice{
		solana.NewAccountMeta(a.relayKey.PublicKey(), true, true),
	}, data)

	tx, err := solana.NewTransaction([]solana.Instruction{instruction}, recentBlockhash, solana.TransactionPayer(a.relayKey.PublicKey()))
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_BUILD_FAILED", "failed to build delivery transaction", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(a.relayKey.PublicKey()) {
			return &a.relayKey
		}
		return nil
	}); err != nil {
		return nil, chainadapter.NewTerminalError("ERR_SIGN_FAILED", "failed to sign delivery transaction", err)
	}

	rawTx, err := tx.MarshalBinary()
	if err != nil {
		return nil, chainadapter.NewTerminalError("ERR_SIGN_FAILED", "failed to encode signed transaction", err)
	}

	txSig, err := a.rpcHelper.SendRawTransaction(ctx, rawTx)
	if err != nil {
		return nil, err
	}
	return []string{txSig}, nil
}
