package stellar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/executor/src/executor/chainadapter"
)

func TestAdapter_Capabilities(t *testing.T) {
	adapter := NewAdapter(22, nil)
	caps := adapter.Capabilities()
	assert.Equal(t, uint16(22), caps.ChainID)
	assert.Equal(t, "stellar", caps.RuntimeFamily)
	assert.False(t, caps.SupportsVAAv1)
	assert.False(t, caps.SupportsModular)
}

func TestAdapter_GetRequest_AlwaysNotFound(t *testing.T) {
	adapter := NewAdapter(22, nil)
	rfe, err := adapter.GetRequest(context.Background(), []byte("exec"), make([]byte, 32))
	require.NoError(t, err)
	assert.Nil(t, rfe)
}

func TestAdapter_RelayVAAv1_ReturnsUnsupported(t *testing.T) {
	adapter := NewAdapter(22, nil)
	_, err := adapter.RelayVAAv1(context.Background(), &chainadapter.RFE{}, nil, nil)
	require.Error(t, err)
	assert.True(t, chainadapter.IsUnsupported(err))
}

func TestAdapter_RelayModular_ReturnsUnsupported(t *testing.T) {
	adapter := NewAdapter(22, nil)
	_, err := adapter.RelayModular(context.Background(), &chainadapter.RFE{}, nil)
	require.Error(t, err)
	assert.True(t, chainadapter.IsUnsupported(err))
}

func TestAddressFromPublicKey(t *testing.T) {
	var pubKey [32]byte
	pubKey[0] = 0x01
	addr, err := addressFromPublicKey(pubKey)
	require.NoError(t, err)
	assert.NotEmpty(t, addr)
}
