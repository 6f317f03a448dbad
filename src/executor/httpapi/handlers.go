package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/example/executor/src/executor/audit"
	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/codec"
	"github.com/example/executor/src/executor/quote"
	"github.com/example/executor/src/executor/registry"
)

func parseChainID(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, &codec.DecodeError{Context: "chainId", Reason: "not a valid uint16"}
	}
	return uint16(v), nil
}

func parseSequence(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, &codec.DecodeError{Context: "sequence", Reason: "not a valid uint64"}
	}
	return v, nil
}

// handleQuote implements GET /v0/quote/{srcChain}/{dstChain} (spec §6.2):
// fetches the destination gas price (L3) and both chains' USD prices (L2),
// then signs a fresh EQ01 quote (L1).
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	srcChain, err := parseChainID(r.PathValue("srcChain"))
	if err != nil {
		writeError(w, err)
		return
	}
	dstChain, err := parseChainID(r.PathValue("dstChain"))
	if err != nil {
		writeError(w, err)
		return
	}

	srcCfg, ok := s.chains[srcChain]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: srcChain})
		return
	}
	dstCfg, ok := s.chains[dstChain]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: dstChain})
		return
	}

	dstAdapter, ok := s.adapters[dstChain]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: dstChain})
		return
	}

	gasPrice, err := dstAdapter.GetGasPrice(ctx)
	if err != nil {
		writeError(w, err)
		return
	}

	srcUSD, dstUSD, err := s.priceCache.GetPrices(ctx, srcCfg.AssetID, dstCfg.AssetID)
	if err != nil {
		writeError(w, err)
		return
	}

	if !fitsUint64(gasPrice) || !fitsUint64(srcUSD) || !fitsUint64(dstUSD) {
		writeError(w, &codec.DecodeError{Context: "quote", Reason: "srcPrice/dstPrice/gasPrice out of (0, 2^64) range"})
		return
	}

	quoterAddr := crypto.PubkeyToAddress(s.quoterKey.PublicKey)
	q := &codec.SignedQuote{
		SrcChain:    srcChain,
		DstChain:    dstChain,
		ExpiryTime:  uint64(time.Now().Add(quoteExpiry).Unix()),
		BaseFee:     dstCfg.BaseFee,
		DstGasPrice: gasPrice.Uint64(),
		SrcPrice:    srcUSD.Uint64(),
		DstPrice:    dstUSD.Uint64(),
	}
	copy(q.QuoterAddress[:], quoterAddr.Bytes())
	q.PayeeAddress = dstCfg.PayeeAddress

	if err := quote.SignQuote(q, s.quoterKey); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, quoteResponse{SignedQuote: encodeHex0x(q.Encode())})
}

// handleEstimate implements GET /v0/estimate/{quote}/{relayInstructions}
// (spec §6.2, §4.1): verifies the quote against the configured quoter set
// and returns the src-native-unit cost estimate.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	quoteBytes, err := decodeHex0x(r.PathValue("quote"))
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := codec.DecodeQuote(quoteBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := quote.Verify(q, s.allowedQuoters); err != nil {
		writeError(w, err)
		return
	}

	instrBytes, err := decodeHex0x(r.PathValue("relayInstructions"))
	if err != nil {
		writeError(w, err)
		return
	}
	instrs, err := codec.DecodeRelayInstructions(instrBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	gasLimit, msgValue, err := codec.TotalGasLimitAndMsgValue(instrs)
	if err != nil {
		writeError(w, err)
		return
	}

	srcCfg, ok := s.chains[q.SrcChain]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: q.SrcChain})
		return
	}
	dstCfg, ok := s.chains[q.DstChain]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: q.DstChain})
		return
	}

	estimate := quote.Estimate(q, gasLimit, msgValue, dstCfg.GasPriceDecimals, srcCfg.NativeDecimals, dstCfg.NativeDecimals)

	writeJSON(w, estimateResponse{Quote: encodeHex0x(quoteBytes), Estimate: bigStr(estimate)})
}

// handleRequestVAAv1 implements GET /v0/request/VAAv1/{chain}/{emitter}/{sequence}
// (spec §6.1/§6.2): encodes an ERV1 payload.
func (s *Server) handleRequestVAAv1(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChainID(r.PathValue("chain"))
	if err != nil {
		writeError(w, err)
		return
	}
	emitterBytes, err := decodeHex0x(r.PathValue("emitter"))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(emitterBytes) != 32 {
		writeError(w, &codec.DecodeError{Context: "emitter", Reason: "want 32 bytes"})
		return
	}
	sequence, err := parseSequence(r.PathValue("sequence"))
	if err != nil {
		writeError(w, err)
		return
	}

	req := &codec.VAAv1Request{EmitterChain: chain, Sequence: sequence}
	copy(req.EmitterAddress[:], emitterBytes)

	writeJSON(w, requestBytesResponse{Bytes: encodeHex0x(req.Encode())})
}

// handleRequestMM implements GET /v0/request/MM/{chain}/{emitter}/{sequence}/{payload}
// (spec §6.2 "modular-messaging variant"), encoding an ERN1 payload.
//
// ERN1's wire format has a fixed 32-byte messageId field (spec §6.1) but
// this endpoint accepts an arbitrary-length payload alongside an
// independent sequence number; spec.md names neither a combination rule.
// This folds both into the fixed field as
// messageId = keccak256(sequence (u64, big-endian) ‖ payload), the same
// approach the teacher's codebase uses elsewhere to compress a
// variable-length identifier into a fixed-width hash field.
func (s *Server) handleRequestMM(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChainID(r.PathValue("chain"))
	if err != nil {
		writeError(w, err)
		return
	}
	managerBytes, err := decodeHex0x(r.PathValue("emitter"))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(managerBytes) != 32 {
		writeError(w, &codec.DecodeError{Context: "emitter", Reason: "want 32 bytes"})
		return
	}
	sequence, err := parseSequence(r.PathValue("sequence"))
	if err != nil {
		writeError(w, err)
		return
	}
	payload, err := decodeHex0x(r.PathValue("payload"))
	if err != nil {
		writeError(w, err)
		return
	}

	seqBytes := make([]byte, 8)
	for i := 0; i < 8; i++ {
		seqBytes[7-i] = byte(sequence >> (8 * i))
	}
	messageID := crypto.Keccak256(append(seqBytes, payload...))

	req := &codec.NTTv1Request{SrcChain: chain}
	copy(req.SrcManager[:], managerBytes)
	copy(req.MessageID[:], messageID)

	writeJSON(w, requestBytesResponse{Bytes: encodeHex0x(req.Encode())})
}

// handleStatus implements GET /v0/status/{id} (spec §4.6, §6.2): returns an
// existing registry entry verbatim, or discovers, validates, and admits a
// fresh RFE.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rawID := r.PathValue("id")
	normalizedID := normalizeHex(rawID)

	if entry, ok := s.registry.Get(normalizedID); ok {
		writeJSON(w, s.buildStatusResponse(entry))
		return
	}

	chainID, locator, _, err := decodeRequestID(rawID)
	if err != nil {
		writeError(w, err)
		return
	}
	adapter, ok := s.adapters[chainID]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: chainID})
		return
	}
	cfg, ok := s.chains[chainID]
	if !ok {
		writeError(w, &ChainUnsupportedError{ChainID: chainID})
		return
	}

	rfe, err := adapter.GetRequest(ctx, cfg.ExecutorAddress, locator)
	if err != nil {
		writeError(w, err)
		return
	}
	if rfe == nil {
		writeError(w, errNotFound)
		return
	}

	entry := s.classifyAndBuildEntry(rfe)
	admitted, _ := s.registry.Admit(normalizedID, entry)
	if s.audit != nil {
		if err := s.audit.Log(audit.Entry{
			Timestamp: time.Now(),
			RequestID: normalizedID,
			ChainID:   chainID,
			Operation: audit.OpAdmitted,
			Status:    "SUCCESS",
		}); err != nil {
			s.logger.Warn("audit log write failed", zap.Error(err))
		}
	}
	writeJSON(w, s.buildStatusResponse(admitted))
}

// classifyAndBuildEntry implements spec §4.6 step 3-5: verify the embedded
// quote, decode the request and relay instructions, compute the estimate,
// and classify the resulting status.
//
// spec.md lists "estimate > amtPaid -> underpaid" ahead of "unknown request
// prefix -> unsupported" in its step-5 ordering, but computing an estimate
// requires a successfully decoded request and quote first. This decodes
// the quote and request before ever comparing against amtPaid, and treats
// any decode or quote-verification failure as "unsupported" rather than as
// an HTTP 400 -- the 400 status in §6.2 is reserved for a malformed request
// id, not for a malformed payload inside an already-located RFE.
func (s *Server) classifyAndBuildEntry(rfe *chainadapter.RFE) *registry.Entry {
	q, err := codec.DecodeQuote(rfe.SignedQuoteBytes)
	if err != nil {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe}
	}
	if err := quote.Verify(q, s.allowedQuoters); err != nil {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe}
	}

	instr, err := codec.DecodeRequest(rfe.RequestBytes)
	if err != nil {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe}
	}

	relayInstrs, err := codec.DecodeRelayInstructions(rfe.RelayInstructionsBytes)
	if err != nil {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe, Instruction: instr}
	}
	gasLimit, msgValue, err := codec.TotalGasLimitAndMsgValue(relayInstrs)
	if err != nil {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe, Instruction: instr}
	}

	srcCfg, srcOK := s.chains[q.SrcChain]
	dstCfg, dstOK := s.chains[q.DstChain]
	if !srcOK || !dstOK {
		return &registry.Entry{Status: registry.StatusUnsupported, RFE: rfe, Instruction: instr}
	}

	estimate := quote.Estimate(q, gasLimit, msgValue, dstCfg.GasPriceDecimals, srcCfg.NativeDecimals, dstCfg.NativeDecimals)

	status := registry.StatusQueued
	if rfe.AmtPaid == nil || estimate.Cmp(rfe.AmtPaid) > 0 {
		status = registry.StatusUnderpaid
	}
	return &registry.Entry{Status: status, RFE: rfe, Instruction: instr}
}

func (s *Server) buildStatusResponse(entry *registry.Entry) statusResponse {
	resp := statusResponse{Status: string(entry.Status)}
	if entry.RFE != nil {
		rfe := entry.RFE
		resp.RequestForExecution = rfeResponse{
			QuoterAddress:          encodeHex0x(rfe.QuoterAddress[:]),
			AmtPaid:                bigStr(rfe.AmtPaid),
			DstChain:               rfe.DstChain,
			DstAddr:                encodeHex0x(rfe.DstAddr[:]),
			RefundAddr:             encodeHex0x(rfe.RefundAddr[:]),
			SignedQuoteBytes:       encodeHex0x(rfe.SignedQuoteBytes),
			RequestBytes:           encodeHex0x(rfe.RequestBytes),
			RelayInstructionsBytes: encodeHex0x(rfe.RelayInstructionsBytes),
			Timestamp:              rfe.Timestamp,
		}
		if q, err := codec.DecodeQuote(rfe.SignedQuoteBytes); err == nil {
			resp.Quote = encodeHex0x(q.Encode())
			if entry.Instruction != nil {
				if instrs, err := codec.DecodeRelayInstructions(rfe.RelayInstructionsBytes); err == nil {
					if gasLimit, msgValue, err := codec.TotalGasLimitAndMsgValue(instrs); err == nil {
						srcCfg, srcOK := s.chains[q.SrcChain]
						dstCfg, dstOK := s.chains[q.DstChain]
						if srcOK && dstOK {
							resp.Estimate = bigStr(quote.Estimate(q, gasLimit, msgValue, dstCfg.GasPriceDecimals, srcCfg.NativeDecimals, dstCfg.NativeDecimals))
						}
					}
				}
			}
		}
	}
	if entry.Instruction != nil {
		resp.Instruction = instructionResponse{Prefix: entry.Instruction.Prefix()}
	}
	return resp
}
