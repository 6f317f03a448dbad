// Package ethereum - relay-delivery transaction signing
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// RelaySigner holds the quoter's own operational ECDSA key and signs the
// destination-chain delivery transactions the EVM adapter submits on the
// Relay Provider's behalf (spec §4.3 relayVAAv1/relayModular). It is not a
// general-purpose message signer: EQ01 quote signing lives in package
// quote, over the quoter's own key, independently of this key's chain-id
// binding.
type RelaySigner struct {
	privateKey *ecdsa.PrivateKey
	address    string
	chainID    *big.Int
}

// NewRelaySigner creates a signer from a hex-encoded private key.
func NewRelaySigner(privateKeyHex string, chainID int64) (*RelaySigner, error) {
	if len(privateKeyHex) >= 2 && privateKeyHex[:2] == "0x" {
		privateKeyHex = privateKeyHex[2:]
	}

	privKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	return NewRelaySignerFromPrivateKey(privKeyBytes, chainID)
}

// NewRelaySignerFromPrivateKey creates a signer from raw private key bytes.
func NewRelaySignerFromPrivateKey(privKeyBytes []byte, chainID int64) (*RelaySigner, error) {
	if len(privKeyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(privKeyBytes))
	}

	privKey, err := crypto.ToECDSA(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	address := crypto.PubkeyToAddress(privKey.PublicKey)

	return &RelaySigner{
		privateKey: privKey,
		address:    address.Hex(),
		chainID:    big.NewInt(chainID),
	}, nil
}

// SignTransaction signs tx (EIP-1559 or legacy) under EIP-155 replay
// protection for this signer's chain id.
func (s *RelaySigner) SignTransaction(tx *types.Transaction) (*types.Transaction, error) {
	signer := types.NewLondonSigner(s.chainID)
	signedTx, err := types.SignTx(tx, signer, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("transaction signing failed: %w", err)
	}
	return signedTx, nil
}

// Address returns the checksummed address this signer controls.
func (s *RelaySigner) Address() string {
	return s.address
}

// ChainID returns a copy of the EIP-155 chain id this signer binds to.
func (s *RelaySigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// ComputeTransactionHash computes the Keccak256 transaction hash of an
// RLP-encoded transaction.
func ComputeTransactionHash(rlpEncodedTx []byte) string {
	return crypto.Keccak256Hash(rlpEncodedTx).Hex()
}
