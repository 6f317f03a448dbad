// Package svm implements the SVM (Solana) chain adapter.
package svm

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// locatorLen is the SVM chain-local locator length: a raw 64-byte
// transaction signature (spec §6.2 "SVM locator is a 64-byte transaction
// signature").
const locatorLen = 64

// decodeLocator parses a chain-local SVM locator into a transaction signature.
func decodeLocator(locator []byte) (solana.Signature, error) {
	if len(locator) != locatorLen {
		return solana.Signature{}, fmt.Errorf("svm locator must be %d bytes, got %d", locatorLen, len(locator))
	}
	var sig solana.Signature
	copy(sig[:], locator)
	return sig, nil
}
