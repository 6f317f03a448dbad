package svm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/example/executor/src/executor/chainadapter"
)

// rfeHeaderLen is the executor program's fixed-width RFE instruction-data
// header. spec.md §4.3 says only that SVM's executor-emitted record is
// decoded "analogous" to the EVM event tuple, per §6, without giving SVM a
// byte layout of its own. This adapter mirrors the EVM event's field order
// and big-endian convention directly onto instruction data: a fixed
// 32+8+2+32+32 header (quoterAddress, amtPaid, dstChain, dstAddr,
// refundAddr) followed by three u32-length-prefixed byte fields
// (signedQuoteBytes, requestBytes, relayInstructionsBytes). See DESIGN.md.
const rfeHeaderLen = 32 + 8 + 2 + 32 + 32

func decodeRFEInstructionData(data []byte) (*chainadapter.RFE, error) {
	if len(data) < rfeHeaderLen {
		return nil, fmt.Errorf("svm: RFE instruction data too short: %d bytes", len(data))
	}

	off := 0
	var quoterAddress [20]byte
	copy(quoterAddress[:], data[off+12:off+32]) // 32-byte Solana pubkey, low 20 bytes kept for the shared RFE struct
	off += 32

	amtPaid := new(big.Int).SetBytes(data[off : off+8])
	off += 8

	dstChain := binary.BigEndian.Uint16(data[off : off+2])
	off += 2

	var dstAddr [32]byte
	copy(dstAddr[:], data[off:off+32])
	off += 32

	var refundAddr [32]byte
	copy(refundAddr[:], data[off:off+32])
	off += 32

	signedQuoteBytes, off, err := readLengthPrefixed(data, off)
	if err != nil {
		return nil, err
	}
	requestBytes, off, err := readLengthPrefixed(data, off)
	if err != nil {
		return nil, err
	}
	relayInstructionsBytes, _, err := readLengthPrefixed(data, off)
	if err != nil {
		return nil, err
	}

	return &chainadapter.RFE{
		QuoterAddress:          quoterAddress,
		AmtPaid:                amtPaid,
		DstChain:               dstChain,
		DstAddr:                dstAddr,
		RefundAddr:             refundAddr,
		SignedQuoteBytes:       signedQuoteBytes,
		RequestBytes:           requestBytes,
		RelayInstructionsBytes: relayInstructionsBytes,
	}, nil
}

func readLengthPrefixed(data []byte, off int) ([]byte, int, error) {
	if off+4 > len(data) {
		return nil, 0, fmt.Errorf("svm: truncated RFE length prefix at offset %d", off)
	}
	n := int(binary.BigEndian.Uint32(data[off : off+4]))
	off += 4
	if off+n > len(data) {
		return nil, 0, fmt.Errorf("svm: truncated RFE field at offset %d (want %d bytes)", off, n)
	}
	return data[off : off+n], off + n, nil
}

func encodeRFEInstructionData(rfe *chainadapter.RFE) []byte {
	buf := make([]byte, 0, rfeHeaderLen+12+len(rfe.SignedQuoteBytes)+len(rfe.RequestBytes)+len(rfe.RelayInstructionsBytes))

	var quoterField [32]byte
	copy(quoterField[12:], rfe.QuoterAddress[:])
	buf = append(buf, quoterField[:]...)

	amtPaid := make([]byte, 8)
	rfe.AmtPaid.FillBytes(amtPaid)
	buf = append(buf, amtPaid...)

	buf = binary.BigEndian.AppendUint16(buf, rfe.DstChain)
	buf = append(buf, rfe.DstAddr[:]...)
	buf = append(buf, rfe.RefundAddr[:]...)
	buf = appendLengthPrefixed(buf, rfe.SignedQuoteBytes)
	buf = appendLengthPrefixed(buf, rfe.RequestBytes)
	buf = appendLengthPrefixed(buf, rfe.RelayInstructionsBytes)
	return buf
}

func appendLengthPrefixed(buf, field []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(field)))
	return append(buf, field...)
}
