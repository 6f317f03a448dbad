package httpapi

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/example/executor/src/executor/codec"
)

// normalizeHex strips an optional "0x"/"0X" prefix and lowercases s, per
// spec §9 open question 3 ("request ids are not normalized by the
// boundary ... implementations should normalize before hashing/lookup to
// avoid accidental duplicate entries").
func normalizeHex(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimPrefix(s, "0x")
	return s
}

// decodeRequestID parses a status request id (spec §6.2 "Request id
// format"): chainId (u16) ‖ chain-local locator, hex-encoded with an
// optional 0x prefix.
func decodeRequestID(raw string) (chainID uint16, locator []byte, normalized string, err error) {
	normalized = normalizeHex(raw)
	data, decErr := hex.DecodeString(normalized)
	if decErr != nil {
		return 0, nil, "", &codec.DecodeError{Context: "requestId", Reason: "not valid hex"}
	}
	if len(data) < 2 {
		return 0, nil, "", &codec.DecodeError{Context: "requestId", Reason: "shorter than the 16-bit chainId prefix"}
	}
	chainID = binary.BigEndian.Uint16(data[:2])
	locator = data[2:]
	return chainID, locator, normalized, nil
}

func encodeHex0x(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

func decodeHex0x(s string) ([]byte, error) {
	s = normalizeHex(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, &codec.DecodeError{Context: "hex", Reason: "not valid hex"}
	}
	return data, nil
}
