package app

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// parseUniversalAddress decodes a chains.yaml address field into the
// 32-byte universal form SignedQuote.PayeeAddress carries on the wire
// (spec §3): hex addresses are right-aligned into the low bytes, matching
// how a 20-byte EVM address sits in a bytes32 slot; base58 addresses
// (Solana) already fill all 32 bytes.
func parseUniversalAddress(s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, nil
	}

	raw, err := decodeAddressBytes(s)
	if err != nil {
		b58, b58Err := base58.Decode(s)
		if b58Err != nil {
			return out, err
		}
		raw = b58
	}
	if len(raw) > 32 {
		return out, fmt.Errorf("app: address %q is longer than 32 bytes", s)
	}
	copy(out[32-len(raw):], raw)
	return out, nil
}

// parseAddressBytes decodes a chains.yaml executorAddress field into the
// raw bytes each adapter's GetRequest expects: SVM programs are base58,
// every other runtime family here is hex.
func parseAddressBytes(runtimeFamily, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if runtimeFamily == "svm" {
		return base58.Decode(s)
	}
	return decodeAddressBytes(s)
}

func decodeAddressBytes(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("app: address %q is not valid hex: %w", s, err)
	}
	return raw, nil
}
