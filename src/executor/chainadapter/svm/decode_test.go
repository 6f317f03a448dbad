package svm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/executor/src/executor/chainadapter"
)

func TestDecodeRFEInstructionData_RoundTrip(t *testing.T) {
	rfe := &chainadapter.RFE{
		QuoterAddress:          [20]byte{1, 2, 3},
		AmtPaid:                big.NewInt(123456),
		DstChain:               7,
		DstAddr:                [32]byte{9, 9, 9},
		RefundAddr:             [32]byte{8, 8, 8},
		SignedQuoteBytes:       []byte("quote-bytes"),
		RequestBytes:           []byte("request-bytes"),
		RelayInstructionsBytes: []byte("instr-bytes"),
	}

	encoded := encodeRFEInstructionData(rfe)
	decoded, err := decodeRFEInstructionData(encoded)
	require.NoError(t, err)

	assert.Equal(t, rfe.QuoterAddress, decoded.QuoterAddress)
	assert.Equal(t, rfe.AmtPaid, decoded.AmtPaid)
	assert.Equal(t, rfe.DstChain, decoded.DstChain)
	assert.Equal(t, rfe.DstAddr, decoded.DstAddr)
	assert.Equal(t, rfe.RefundAddr, decoded.RefundAddr)
	assert.Equal(t, rfe.SignedQuoteBytes, decoded.SignedQuoteBytes)
	assert.Equal(t, rfe.RequestBytes, decoded.RequestBytes)
	assert.Equal(t, rfe.RelayInstructionsBytes, decoded.RelayInstructionsBytes)
}

func TestDecodeRFEInstructionData_TooShort(t *testing.T) {
	_, err := decodeRFEInstructionData(make([]byte, rfeHeaderLen-1))
	require.Error(t, err)
}

func TestDecodeLocator_WrongLength(t *testing.T) {
	_, err := decodeLocator(make([]byte, 32))
	require.Error(t, err)
}

func TestDecodeLocator_OK(t *testing.T) {
	locator := make([]byte, locatorLen)
	locator[0] = 0xAB
	sig, err := decodeLocator(locator)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), sig[0])
}
