package codec

import "math/big"

// Relay instruction type tags (spec §6.1 "Relay instructions").
const (
	instructionTypeGas        byte = 0x01
	instructionTypeGasDropOff byte = 0x02

	gasItemLen        = 1 + 16 + 16 // 33 B
	gasDropOffItemLen = 1 + 16 + 32 // 49 B
	uint128Len        = 16
)

// RelayInstruction is implemented by each tagged relay-instruction item.
type RelayInstruction interface {
	// Type returns the wire discriminator byte for this item.
	Type() byte
}

// GasInstruction is relay instruction type 0x01: additional gas limit and
// message value to forward to the destination call. Type-1 items are
// additive (spec §6.1, §8 property 4).
type GasInstruction struct {
	GasLimit *big.Int
	MsgValue *big.Int
}

func (g *GasInstruction) Type() byte { return instructionTypeGas }

// GasDropOffInstruction is relay instruction type 0x02: a native-token
// drop-off to deliver to recipient alongside the call. At most one item of
// this type may appear in a single instruction sequence (spec §6.1).
type GasDropOffInstruction struct {
	DropOff   *big.Int
	Recipient [32]byte
}

func (g *GasDropOffInstruction) Type() byte { return instructionTypeGasDropOff }

// EncodeRelayInstructions serializes a sequence of relay instructions as
// the concatenation of their tagged wire items.
func EncodeRelayInstructions(instrs []RelayInstruction) ([]byte, error) {
	buf := make([]byte, 0)
	seenDropOff := false
	for _, instr := range instrs {
		switch v := instr.(type) {
		case *GasInstruction:
			buf = append(buf, instructionTypeGas)
			buf = append(buf, encodeUint128(v.GasLimit)...)
			buf = append(buf, encodeUint128(v.MsgValue)...)
		case *GasDropOffInstruction:
			if seenDropOff {
				return nil, &UnsupportedInstructionError{Reason: "second gas drop-off item"}
			}
			seenDropOff = true
			buf = append(buf, instructionTypeGasDropOff)
			buf = append(buf, encodeUint128(v.DropOff)...)
			buf = append(buf, v.Recipient[:]...)
		default:
			return nil, &UnsupportedInstructionError{Reason: "unknown instruction type"}
		}
	}
	return buf, nil
}

// DecodeRelayInstructions parses a concatenation of tagged relay-instruction
// items (spec §6.1, §8 scenario S3). Fails with DecodeError on a truncated
// item and with UnsupportedInstructionError on an unknown type byte or a
// second drop-off item.
func DecodeRelayInstructions(data []byte) ([]RelayInstruction, error) {
	var instrs []RelayInstruction
	seenDropOff := false
	off := 0
	for off < len(data) {
		tag := data[off]
		switch tag {
		case instructionTypeGas:
			if off+gasItemLen > len(data) {
				return nil, newDecodeError("relay instructions", "truncated gas item")
			}
			gasLimit := decodeUint128(data[off+1 : off+17])
			msgValue := decodeUint128(data[off+17 : off+33])
			instrs = append(instrs, &GasInstruction{GasLimit: gasLimit, MsgValue: msgValue})
			off += gasItemLen
		case instructionTypeGasDropOff:
			if seenDropOff {
				return nil, &UnsupportedInstructionError{Reason: "second gas drop-off item"}
			}
			if off+gasDropOffItemLen > len(data) {
				return nil, newDecodeError("relay instructions", "truncated gas drop-off item")
			}
			seenDropOff = true
			dropOff := decodeUint128(data[off+1 : off+17])
			var recipient [32]byte
			copy(recipient[:], data[off+17:off+49])
			instrs = append(instrs, &GasDropOffInstruction{DropOff: dropOff, Recipient: recipient})
			off += gasDropOffItemLen
		default:
			return nil, &UnsupportedInstructionError{Reason: "unknown instruction type byte"}
		}
	}
	return instrs, nil
}

// TotalGasLimitAndMsgValue sums the componentwise fields of all gas-type
// items (spec §4.0, §8 property 4) and adds the drop-off item's amount, if
// any, to msgValue. A second drop-off item, already
// rejected by DecodeRelayInstructions, is also rejected here in case
// instrs was built programmatically rather than decoded.
func TotalGasLimitAndMsgValue(instrs []RelayInstruction) (gasLimit, msgValue *big.Int, err error) {
	gasLimit = new(big.Int)
	msgValue = new(big.Int)
	seenDropOff := false
	for _, instr := range instrs {
		switch v := instr.(type) {
		case *GasInstruction:
			gasLimit.Add(gasLimit, v.GasLimit)
			msgValue.Add(msgValue, v.MsgValue)
		case *GasDropOffInstruction:
			if seenDropOff {
				return nil, nil, &UnsupportedInstructionError{Reason: "second gas drop-off item"}
			}
			seenDropOff = true
			msgValue.Add(msgValue, v.DropOff)
		default:
			return nil, nil, &UnsupportedInstructionError{Reason: "unknown instruction type"}
		}
	}
	return gasLimit, msgValue, nil
}

// encodeUint128 renders v as a 16-byte big-endian field. Values must fit in
// 128 bits; callers constructing instructions from trusted wire-decoded or
// configuration-derived values are expected to uphold this.
func encodeUint128(v *big.Int) []byte {
	buf := make([]byte, uint128Len)
	v.FillBytes(buf)
	return buf
}

func decodeUint128(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}
