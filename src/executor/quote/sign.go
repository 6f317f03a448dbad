// Package quote implements the Executor's quote engine (spec §4.1, L1):
// signing and verifying EQ01 Signed Quotes, and computing cost estimates
// from a quote plus relay instructions.
package quote

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/example/executor/src/executor/codec"
)

// QuoteError reports a quote that failed signature recovery or whose
// recovered signer is not in the allowed quoter set (spec §4.1 "verify").
type QuoteError struct {
	Reason string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote: %s", e.Reason)
}

// Sign computes the 65-byte r‖s‖v ECDSA signature over body using
// keccak256(body) as the digest (spec §4.1 "sign"). The returned v byte is
// 0 or 1, matching go-ethereum's raw recoverable-signature convention; it
// is not EIP-155 adjusted since a Signed Quote is not a transaction.
func Sign(body []byte, privKey *ecdsa.PrivateKey) ([65]byte, error) {
	digest := crypto.Keccak256(body)
	sig, err := crypto.Sign(digest, privKey)
	if err != nil {
		return [65]byte{}, fmt.Errorf("quote: sign: %w", err)
	}
	var out [65]byte
	copy(out[:], sig)
	return out, nil
}

// SignQuote computes Body(), signs it with privKey, and stores the
// resulting signature on q.
func SignQuote(q *codec.SignedQuote, privKey *ecdsa.PrivateKey) error {
	sig, err := Sign(q.Body(), privKey)
	if err != nil {
		return err
	}
	q.Signature = sig
	return nil
}

// Verify checks that q's signature recovers to q.QuoterAddress over
// keccak256(q.Body()), that the recovered address is a member of
// allowedQuoters (spec §4.1 "verify", invariant Q1), and that q has not
// expired (invariant Q3: expiryTime > now when accepted for an action).
// Comparison against allowedQuoters is case-insensitive on the hex form,
// per spec.
func Verify(q *codec.SignedQuote, allowedQuoters map[string]bool) error {
	digest := crypto.Keccak256(q.Body())
	pubKey, err := crypto.SigToPub(digest, q.Signature[:])
	if err != nil {
		return &QuoteError{Reason: "signature does not recover: " + err.Error()}
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	var quoterAddr [20]byte
	copy(quoterAddr[:], recovered.Bytes())
	if quoterAddr != q.QuoterAddress {
		return &QuoteError{Reason: "recovered address does not match quoterAddress"}
	}

	key := strings.ToLower(recovered.Hex())
	if !allowedQuoters[key] {
		return &QuoteError{Reason: "quoter not in allowed set"}
	}

	if q.ExpiryTime <= uint64(time.Now().Unix()) {
		return &QuoteError{Reason: "quote expired"}
	}
	return nil
}
