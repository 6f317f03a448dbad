package codec

import (
	"encoding/binary"

	"github.com/example/executor/src/executor/chainadapter"
)

// Request payload prefixes (spec §6.1 "Request payloads").
const (
	PrefixVAAv1      = "ERV1"
	PrefixNTTv1      = "ERN1"
	PrefixCCTPv1     = "ERC1"
	PrefixCCTPv2Auto = "ERC2"
)

const (
	erv1Len = 4 + 2 + 32 + 8  // 46 B
	ern1Len = 4 + 2 + 32 + 32 // 70 B
	erc1Len = 4 + 4 + 8       // 16 B
	erc2Len = 4 + 1           // 5 B
)

// VAAv1Request is the ERV1 request payload: a Wormhole-style VAA locator.
type VAAv1Request struct {
	EmitterChain   uint16
	EmitterAddress [32]byte
	Sequence       uint64
}

func (r *VAAv1Request) Prefix() string { return PrefixVAAv1 }

// Encode serializes the ERV1 payload (46 bytes).
func (r *VAAv1Request) Encode() []byte {
	buf := make([]byte, 0, erv1Len)
	buf = append(buf, PrefixVAAv1...)
	buf = binary.BigEndian.AppendUint16(buf, r.EmitterChain)
	buf = append(buf, r.EmitterAddress[:]...)
	buf = binary.BigEndian.AppendUint64(buf, r.Sequence)
	return buf
}

func decodeVAAv1(data []byte) (*VAAv1Request, error) {
	if len(data) != erv1Len {
		return nil, newDecodeError("ERV1", "want 46 bytes")
	}
	r := &VAAv1Request{}
	off := 4
	r.EmitterChain = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	copy(r.EmitterAddress[:], data[off:off+32])
	off += 32
	r.Sequence = binary.BigEndian.Uint64(data[off : off+8])
	return r, nil
}

// NTTv1Request is the ERN1 request payload: a Native Token Transfer locator.
type NTTv1Request struct {
	SrcChain  uint16
	SrcManager [32]byte
	MessageID  [32]byte
}

func (r *NTTv1Request) Prefix() string { return PrefixNTTv1 }

// Encode serializes the ERN1 payload (70 bytes).
func (r *NTTv1Request) Encode() []byte {
	buf := make([]byte, 0, ern1Len)
	buf = append(buf, PrefixNTTv1...)
	buf = binary.BigEndian.AppendUint16(buf, r.SrcChain)
	buf = append(buf, r.SrcManager[:]...)
	buf = append(buf, r.MessageID[:]...)
	return buf
}

func decodeNTTv1(data []byte) (*NTTv1Request, error) {
	if len(data) != ern1Len {
		return nil, newDecodeError("ERN1", "want 70 bytes")
	}
	r := &NTTv1Request{}
	off := 4
	r.SrcChain = binary.BigEndian.Uint16(data[off : off+2])
	off += 2
	copy(r.SrcManager[:], data[off:off+32])
	off += 32
	copy(r.MessageID[:], data[off:off+32])
	return r, nil
}

// CCTPv1Request is the ERC1 request payload: a Circle CCTP v1 message locator.
type CCTPv1Request struct {
	SourceDomain uint32
	Nonce        uint64
}

func (r *CCTPv1Request) Prefix() string { return PrefixCCTPv1 }

// Encode serializes the ERC1 payload (16 bytes).
func (r *CCTPv1Request) Encode() []byte {
	buf := make([]byte, 0, erc1Len)
	buf = append(buf, PrefixCCTPv1...)
	buf = binary.BigEndian.AppendUint32(buf, r.SourceDomain)
	buf = binary.BigEndian.AppendUint64(buf, r.Nonce)
	return buf
}

func decodeCCTPv1(data []byte) (*CCTPv1Request, error) {
	if len(data) != erc1Len {
		return nil, newDecodeError("ERC1", "want 16 bytes")
	}
	r := &CCTPv1Request{}
	off := 4
	r.SourceDomain = binary.BigEndian.Uint32(data[off : off+4])
	off += 4
	r.Nonce = binary.BigEndian.Uint64(data[off : off+8])
	return r, nil
}

// CCTPv2AutoRequest is the ERC2 request payload: Circle CCTP v2 with
// auto-discovery of the attestation (spec §6.1, "autoDiscover (u8 == 1)").
type CCTPv2AutoRequest struct {
	AutoDiscover bool
}

func (r *CCTPv2AutoRequest) Prefix() string { return PrefixCCTPv2Auto }

// Encode serializes the ERC2 payload (5 bytes).
func (r *CCTPv2AutoRequest) Encode() []byte {
	buf := make([]byte, 0, erc2Len)
	buf = append(buf, PrefixCCTPv2Auto...)
	if r.AutoDiscover {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func decodeCCTPv2Auto(data []byte) (*CCTPv2AutoRequest, error) {
	if len(data) != erc2Len {
		return nil, newDecodeError("ERC2", "want 5 bytes")
	}
	if data[4] != 1 {
		return nil, newDecodeError("ERC2", "autoDiscover must be 1")
	}
	return &CCTPv2AutoRequest{AutoDiscover: true}, nil
}

// DecodeRequest dispatches on the 4-byte prefix to the matching request
// payload decoder (spec §4.0, "sum types ... prefix-driven decoder").
func DecodeRequest(data []byte) (chainadapter.DecodedRequest, error) {
	if len(data) < 4 {
		return nil, newDecodeError("request", "payload shorter than prefix")
	}
	switch string(data[0:4]) {
	case PrefixVAAv1:
		return decodeVAAv1(data)
	case PrefixNTTv1:
		return decodeNTTv1(data)
	case PrefixCCTPv1:
		return decodeCCTPv1(data)
	case PrefixCCTPv2Auto:
		return decodeCCTPv2Auto(data)
	default:
		return nil, newDecodeError("request", "unknown prefix "+string(data[0:4]))
	}
}
