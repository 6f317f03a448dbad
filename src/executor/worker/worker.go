// Package worker implements the relay worker (spec §4.5 "Relay worker"): a
// single cooperative loop that drains the registry's pending queue,
// dispatches each entry to the adapter owning its destination chain, and
// records the outcome. An outer harness wraps the loop with exponential
// backoff on uncaught iteration errors (spec §4.5 "Outer harness").
package worker

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/example/executor/src/executor/audit"
	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/chainadapter/metrics"
	"github.com/example/executor/src/executor/codec"
	"github.com/example/executor/src/executor/registry"
)

const (
	// defaultSleep is RELAY_SLEEP (spec §4.5 step 1).
	defaultSleep = 5 * time.Second
	maxBackoff   = 2 * time.Minute
)

// Worker drains the registry's pending queue and drives each RelayEntry to
// a terminal status. Not safe to Run from more than one goroutine at a
// time -- the registry's single-writer contract (spec §5) assumes exactly
// one worker loop.
type Worker struct {
	registry   *registry.Registry
	adapters   map[uint16]chainadapter.Adapter
	vaaFetcher VAAFetcher
	metrics    metrics.ChainMetrics
	logger     *zap.Logger
	audit      *audit.Logger
	sleep      time.Duration

	stop chan struct{}
}

// New builds a Worker dispatching to adapters keyed by destination ChainID.
// vaaFetcher may be nil if no ERV1 request is ever expected; attempting to
// relay one without a fetcher configured is a terminal failure. auditLog may
// be nil, in which case delivery outcomes are only logged, not persisted.
func New(reg *registry.Registry, adapters map[uint16]chainadapter.Adapter, vaaFetcher VAAFetcher, m metrics.ChainMetrics, logger *zap.Logger, auditLog *audit.Logger) *Worker {
	if m == nil {
		m = &metrics.NoOpMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		registry:   reg,
		adapters:   adapters,
		vaaFetcher: vaaFetcher,
		metrics:    m,
		logger:     logger,
		audit:      auditLog,
		sleep:      defaultSleep,
		stop:       make(chan struct{}),
	}
}

// logAudit records a relay lifecycle event if an audit logger is configured,
// logging (not failing the worker iteration on) any write error.
func (w *Worker) logAudit(entry *registry.Entry, operation, status, failureReason string) {
	if w.audit == nil {
		return
	}
	err := w.audit.Log(audit.Entry{
		Timestamp:     time.Now(),
		RequestID:     entry.ID,
		ChainID:       entry.RFE.DstChain,
		Operation:     operation,
		Status:        status,
		FailureReason: failureReason,
	})
	if err != nil {
		w.logger.Warn("audit log write failed", zap.Error(err))
	}
}

// Stop signals the worker to exit before its next sleep (spec §5
// "Shutdown is cooperative: the worker observes a stop signal between
// iterations and exits before the next sleep").
func (w *Worker) Stop() {
	close(w.stop)
}

// Run is the outer harness (spec §4.5): repeatedly drives runOnce. An
// uncaught error increments a retry counter and backs off by
// RELAY_SLEEP*2^retry, capped at maxBackoff; a clean iteration resets the
// counter. Returns when Stop is called or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	retry := 0
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		advanced, err := w.runOnce(ctx)
		if err != nil {
			w.logger.Error("relay worker iteration failed", zap.Error(err), zap.Int("retry", retry))
			backoff := w.sleep * time.Duration(uint64(1)<<uint(retry))
			if backoff > maxBackoff || backoff <= 0 {
				backoff = maxBackoff
			}
			retry++
			if !w.sleepOrStop(ctx, backoff) {
				return
			}
			continue
		}
		retry = 0

		if !advanced {
			if !w.sleepOrStop(ctx, w.sleep) {
				return
			}
		}
	}
}

func (w *Worker) sleepOrStop(ctx context.Context, d time.Duration) bool {
	select {
	case <-w.stop:
		return false
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// runOnce executes one iteration of spec §4.5 steps 1-5. The bool reports
// whether an id was popped (false means the queue was empty).
func (w *Worker) runOnce(ctx context.Context) (bool, error) {
	id, ok := w.registry.PopPending()
	if !ok {
		return false, nil
	}

	entry, ok := w.registry.Get(id)
	if !ok {
		// Popped an id with no backing entry: nothing further to do for
		// this iteration, but this is not itself a harness-level failure.
		return true, nil
	}

	w.deliver(ctx, entry)
	return true, nil
}

// deliver dispatches entry to the adapter for its destination chain and
// applies the resulting lifecycle transition (spec §4.5 steps 2-5).
func (w *Worker) deliver(ctx context.Context, entry *registry.Entry) {
	start := time.Now()
	chainID := entry.RFE.DstChain

	adapter, ok := w.adapters[chainID]
	if !ok {
		w.registry.Update(entry.ID, registry.Patch{Status: registry.StatusUnsupported})
		w.logAudit(entry, audit.OpUnsupported, "FAILURE", "no adapter for destination chain")
		return
	}

	txIDs, err := w.submit(ctx, adapter, entry)

	success := err == nil
	w.metrics.RecordDispatch(chainIDLabel(chainID), time.Since(start), success)

	if success {
		w.registry.Update(entry.ID, registry.Patch{Status: registry.StatusSubmitted, AddTxs: txIDs})
		w.metrics.RecordSubmit(chainIDLabel(chainID), time.Since(start), true)
		w.logAudit(entry, audit.OpSubmitted, "SUCCESS", "")
		return
	}

	switch {
	case chainadapter.IsTerminal(err), chainadapter.IsUnsupported(err):
		w.logger.Warn("relay delivery failed terminally", zap.String("id", entry.ID), zap.Error(err))
		w.registry.Update(entry.ID, registry.Patch{Status: registry.StatusFailed})
		w.logAudit(entry, audit.OpFailed, "FAILURE", err.Error())
	default:
		w.logger.Info("relay delivery failed transiently, requeueing", zap.String("id", entry.ID), zap.Error(err))
		w.registry.Requeue(entry.ID)
		w.logAudit(entry, audit.OpRequeued, "FAILURE", err.Error())
	}
}

// submit dispatches entry's decoded request to the right adapter method,
// fetching attested VAA bytes first for ERV1 requests (spec §4.3
// relayVAAv1/relayModular).
func (w *Worker) submit(ctx context.Context, adapter chainadapter.Adapter, entry *registry.Entry) ([]string, error) {
	if entry.Instruction == nil {
		return nil, chainadapter.NewTerminalError("ERR_NO_INSTRUCTION", "entry has no decoded request", nil)
	}

	if entry.Instruction.Prefix() != codec.PrefixVAAv1 {
		return adapter.RelayModular(ctx, entry.RFE, entry.Instruction)
	}

	vaaReq, ok := entry.Instruction.(*codec.VAAv1Request)
	if !ok {
		return nil, chainadapter.NewTerminalError("ERR_NO_INSTRUCTION", "ERV1 prefix with mismatched decoded type", nil)
	}
	if w.vaaFetcher == nil {
		return nil, chainadapter.NewTerminalError("ERR_NO_VAA_FETCHER", "no guardian VAA fetcher configured", nil)
	}

	attestedBytes, err := w.vaaFetcher.FetchSignedVAA(ctx, vaaReq.EmitterChain, vaaReq.EmitterAddress, vaaReq.Sequence)
	if err != nil {
		return nil, err
	}

	return adapter.RelayVAAv1(ctx, entry.RFE, entry.Instruction, attestedBytes)
}

func chainIDLabel(chainID uint16) string {
	return "chain-" + strconv.FormatUint(uint64(chainID), 10)
}
