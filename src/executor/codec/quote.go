package codec

import (
	"encoding/binary"
)

// QuotePrefix is the 4-byte discriminator for a Signed Quote (spec §6.1).
const QuotePrefix = "EQ01"

// GovernancePrefix is mentioned for completeness of the boundary (spec
// §6.1 "EG01"); the Executor never decodes governance messages itself, so
// no decoder is implemented for it.
const GovernancePrefix = "EG01"

const (
	quoteBodyLen      = 4 + 20 + 32 + 2 + 2 + 8 + 8 + 8 + 8 + 8 // 100 B
	quoteSignatureLen = 65
	quoteTotalLen     = quoteBodyLen + quoteSignatureLen // 165 B
)

// SignedQuote is the EQ01 wire struct (spec §3, §6.1). Signature is the
// 65-byte r‖s‖v ECDSA signature over Body().
//
// The field-level byte widths given alongside EQ01's definition sum to 165
// bytes; this codec follows that explicit per-field breakdown rather than
// the section's summary byte count.
type SignedQuote struct {
	QuoterAddress [20]byte
	PayeeAddress  [32]byte
	SrcChain      uint16
	DstChain      uint16
	ExpiryTime    uint64
	BaseFee       uint64
	DstGasPrice   uint64
	SrcPrice      uint64
	DstPrice      uint64
	Signature     [65]byte
}

// Body returns the signed portion of the quote: everything except the
// trailing signature. Callers sign/verify over this exact byte slice
// (invariant Q1, "signature recovers to quoterAddress over keccak256(body)").
func (q *SignedQuote) Body() []byte {
	buf := make([]byte, 0, quoteBodyLen)
	buf = append(buf, QuotePrefix...)
	buf = append(buf, q.QuoterAddress[:]...)
	buf = append(buf, q.PayeeAddress[:]...)
	buf = binary.BigEndian.AppendUint16(buf, q.SrcChain)
	buf = binary.BigEndian.AppendUint16(buf, q.DstChain)
	buf = binary.BigEndian.AppendUint64(buf, q.ExpiryTime)
	buf = binary.BigEndian.AppendUint64(buf, q.BaseFee)
	buf = binary.BigEndian.AppendUint64(buf, q.DstGasPrice)
	buf = binary.BigEndian.AppendUint64(buf, q.SrcPrice)
	buf = binary.BigEndian.AppendUint64(buf, q.DstPrice)
	return buf
}

// Encode serializes the quote to its 165-byte wire form: Body() ‖ Signature.
func (q *SignedQuote) Encode() []byte {
	buf := make([]byte, 0, quoteTotalLen)
	buf = append(buf, q.Body()...)
	buf = append(buf, q.Signature[:]...)
	return buf
}

// DecodeQuote parses a 165-byte EQ01 payload. Fails with DecodeError on
// wrong length or a mismatched prefix.
func DecodeQuote(data []byte) (*SignedQuote, error) {
	if len(data) != quoteTotalLen {
		return nil, newDecodeError("quote", "want 165 bytes")
	}
	if string(data[0:4]) != QuotePrefix {
		return nil, newDecodeError("quote", "bad prefix, want EQ01")
	}

	q := &SignedQuote{}
	off := 4
	copy(q.QuoterAddress[:], data[off:off+20])
	off += 20
	copy(q.PayeeAddress[:], data[off:off+32])
	off += 32
	q.SrcChain = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	q.DstChain = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	q.ExpiryTime = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	q.BaseFee = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	q.DstGasPrice = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	q.SrcPrice = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	q.DstPrice = binary.BigEndian.Uint64(data[off : off+8])
	off += 8
	copy(q.Signature[:], data[off:off+quoteSignatureLen])

	return q, nil
}
