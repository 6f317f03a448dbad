package worker

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/codec"
	"github.com/example/executor/src/executor/registry"
)

type fakeAdapter struct {
	chainID         uint16
	relayVAAv1Err   error
	relayModularErr error
	relayVAAv1Txs   []string
	relayModularTxs []string
	calls           int
}

func (a *fakeAdapter) ChainID() uint16        { return a.chainID }
func (a *fakeAdapter) RuntimeFamily() string  { return "fake" }
func (a *fakeAdapter) Capabilities() chainadapter.Capabilities {
	return chainadapter.Capabilities{ChainID: a.chainID, RuntimeFamily: "fake", SupportsVAAv1: true, SupportsModular: true}
}
func (a *fakeAdapter) GetGasPrice(ctx context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (a *fakeAdapter) GetRequest(ctx context.Context, executorAddress, locator []byte) (*chainadapter.RFE, error) {
	return nil, nil
}
func (a *fakeAdapter) RelayVAAv1(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest, attestedBytes []byte) ([]string, error) {
	a.calls++
	if a.relayVAAv1Err != nil {
		return nil, a.relayVAAv1Err
	}
	return a.relayVAAv1Txs, nil
}
func (a *fakeAdapter) RelayModular(ctx context.Context, rfe *chainadapter.RFE, req chainadapter.DecodedRequest) ([]string, error) {
	a.calls++
	if a.relayModularErr != nil {
		return nil, a.relayModularErr
	}
	return a.relayModularTxs, nil
}

type fakeVAAFetcher struct {
	bytes []byte
	err   error
}

func (f *fakeVAAFetcher) FetchSignedVAA(ctx context.Context, emitterChain uint16, emitterAddress [32]byte, sequence uint64) ([]byte, error) {
	return f.bytes, f.err
}

func modularEntry(id string, dstChain uint16) *registry.Entry {
	return &registry.Entry{
		ID:          id,
		Status:      registry.StatusQueued,
		RFE:         &chainadapter.RFE{DstChain: dstChain, AmtPaid: big.NewInt(0)},
		Instruction: &codec.NTTv1Request{SrcChain: 1},
	}
}

func TestWorker_RunOnce_EmptyQueueReturnsFalse(t *testing.T) {
	reg := registry.New()
	w := New(reg, nil, nil, nil, nil, nil)

	advanced, err := w.runOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestWorker_Deliver_SuccessMarksSubmitted(t *testing.T) {
	reg := registry.New()
	adapter := &fakeAdapter{chainID: 2, relayModularTxs: []string{"0xabc"}}
	w := New(reg, map[uint16]chainadapter.Adapter{2: adapter}, nil, nil, nil, nil)

	entry := modularEntry("id-1", 2)
	reg.Admit(entry.ID, entry)

	advanced, err := w.runOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, advanced)

	stored, ok := reg.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, registry.StatusSubmitted, stored.Status)
	assert.Equal(t, []string{"0xabc"}, stored.Txs)
	assert.Equal(t, 1, adapter.calls)
}

func TestWorker_Deliver_TerminalErrorMarksFailed(t *testing.T) {
	reg := registry.New()
	adapter := &fakeAdapter{chainID: 2, relayModularErr: chainadapter.NewTerminalError(chainadapter.ErrCodeReverted, "execution reverted", nil)}
	w := New(reg, map[uint16]chainadapter.Adapter{2: adapter}, nil, nil, nil, nil)

	entry := modularEntry("id-2", 2)
	reg.Admit(entry.ID, entry)

	_, err := w.runOnce(context.Background())
	require.NoError(t, err)

	stored, ok := reg.Get("id-2")
	require.True(t, ok)
	assert.Equal(t, registry.StatusFailed, stored.Status)
}

func TestWorker_Deliver_TransientErrorRequeues(t *testing.T) {
	reg := registry.New()
	adapter := &fakeAdapter{chainID: 2, relayModularErr: chainadapter.NewTransientError(chainadapter.ErrCodeRPCTimeout, "timeout", nil)}
	w := New(reg, map[uint16]chainadapter.Adapter{2: adapter}, nil, nil, nil, nil)

	entry := modularEntry("id-3", 2)
	reg.Admit(entry.ID, entry)

	_, err := w.runOnce(context.Background())
	require.NoError(t, err)

	stored, ok := reg.Get("id-3")
	require.True(t, ok)
	assert.Equal(t, registry.StatusQueued, stored.Status)
	assert.Equal(t, 1, reg.PendingLen())
}

func TestWorker_Deliver_UnknownChainMarksUnsupported(t *testing.T) {
	reg := registry.New()
	w := New(reg, map[uint16]chainadapter.Adapter{}, nil, nil, nil, nil)

	entry := modularEntry("id-4", 99)
	reg.Admit(entry.ID, entry)

	_, err := w.runOnce(context.Background())
	require.NoError(t, err)

	stored, ok := reg.Get("id-4")
	require.True(t, ok)
	assert.Equal(t, registry.StatusUnsupported, stored.Status)
}

func TestWorker_Deliver_VAAv1FetchesAttestedBytesBeforeRelay(t *testing.T) {
	reg := registry.New()
	adapter := &fakeAdapter{chainID: 2, relayVAAv1Txs: []string{"0xfeed"}}
	fetcher := &fakeVAAFetcher{bytes: []byte("attested")}
	w := New(reg, map[uint16]chainadapter.Adapter{2: adapter}, fetcher, nil, nil, nil)

	entry := &registry.Entry{
		ID:          "id-5",
		Status:      registry.StatusQueued,
		RFE:         &chainadapter.RFE{DstChain: 2, AmtPaid: big.NewInt(0)},
		Instruction: &codec.VAAv1Request{EmitterChain: 1, Sequence: 7},
	}
	reg.Admit(entry.ID, entry)

	_, err := w.runOnce(context.Background())
	require.NoError(t, err)

	stored, ok := reg.Get("id-5")
	require.True(t, ok)
	assert.Equal(t, registry.StatusSubmitted, stored.Status)
	assert.Equal(t, []string{"0xfeed"}, stored.Txs)
}

func TestWorker_Deliver_VAAv1WithoutFetcherIsTerminal(t *testing.T) {
	reg := registry.New()
	adapter := &fakeAdapter{chainID: 2}
	w := New(reg, map[uint16]chainadapter.Adapter{2: adapter}, nil, nil, nil, nil)

	entry := &registry.Entry{
		ID:          "id-6",
		Status:      registry.StatusQueued,
		RFE:         &chainadapter.RFE{DstChain: 2, AmtPaid: big.NewInt(0)},
		Instruction: &codec.VAAv1Request{EmitterChain: 1, Sequence: 7},
	}
	reg.Admit(entry.ID, entry)

	_, err := w.runOnce(context.Background())
	require.NoError(t, err)

	stored, ok := reg.Get("id-6")
	require.True(t, ok)
	assert.Equal(t, registry.StatusFailed, stored.Status)
	assert.Equal(t, 0, adapter.calls)
}

func TestWorker_Run_StopsOnStopSignal(t *testing.T) {
	reg := registry.New()
	w := New(reg, map[uint16]chainadapter.Adapter{}, nil, nil, nil, nil)
	w.sleep = time.Millisecond

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
