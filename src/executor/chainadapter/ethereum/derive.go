// Package ethereum - address helpers
package ethereum

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// pubKeyToChecksummedAddress converts a secp256k1 public key (33-byte
// compressed or 65-byte uncompressed) to an EIP-55 checksummed address.
func pubKeyToChecksummedAddress(pubKeyBytes []byte) (string, error) {
	var pubKey *btcec.PublicKey
	var err error

	switch len(pubKeyBytes) {
	case 33:
		pubKey, err = btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse compressed public key: %w", err)
		}
	case 65:
		if pubKeyBytes[0] != 0x04 {
			return "", fmt.Errorf("invalid uncompressed public key: must start with 0x04")
		}
		pubKey, err = btcec.ParsePubKey(pubKeyBytes)
		if err != nil {
			return "", fmt.Errorf("failed to parse uncompressed public key: %w", err)
		}
	default:
		return "", fmt.Errorf("invalid public key length: expected 33 or 65 bytes, got %d", len(pubKeyBytes))
	}

	uncompressed := pubKey.SerializeUncompressed()
	hash := crypto.Keccak256(uncompressed[1:])
	address := common.BytesToAddress(hash[12:])
	return address.Hex(), nil
}
