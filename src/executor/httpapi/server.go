// Package httpapi implements the Executor's HTTP surface (spec §4.6, L6):
// quote issuance, estimate computation, request-payload encoding, and the
// status endpoint that admits a freshly observed RFE into the registry.
//
// The teacher carries no HTTP-framework dependency anywhere in its tree, so
// this package uses net/http's Go 1.22+ ServeMux pattern routing rather than
// reaching for a router library the rest of the corpus never imports.
package httpapi

import (
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/executor/src/executor/audit"
	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/priceoracle"
	"github.com/example/executor/src/executor/registry"
)

// quoteExpiry is how far past issuance a Signed Quote's expiryTime is set.
const quoteExpiry = 5 * time.Minute

// Server holds the dependencies the HTTP handlers need and implements
// http.Handler via its ServeMux.
type Server struct {
	registry       *registry.Registry
	adapters       map[uint16]chainadapter.Adapter
	chains         map[uint16]ChainConfig
	priceCache     *priceoracle.Cache
	quoterKey      *ecdsa.PrivateKey
	allowedQuoters map[string]bool
	logger         *zap.Logger
	limiter        *clientLimiter
	audit          *audit.Logger

	mux     *http.ServeMux
	handler http.Handler
}

// New builds a Server. adapters and chains are keyed by chain id; allowedQuoters
// keys are lowercase 0x-prefixed addresses (the form quote.Verify expects).
// auditLog may be nil, in which case request admission is only logged, not
// persisted.
func New(
	reg *registry.Registry,
	adapters map[uint16]chainadapter.Adapter,
	chains map[uint16]ChainConfig,
	priceCache *priceoracle.Cache,
	quoterKey *ecdsa.PrivateKey,
	allowedQuoters map[string]bool,
	logger *zap.Logger,
	auditLog *audit.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		registry:       reg,
		adapters:       adapters,
		chains:         chains,
		priceCache:     priceCache,
		quoterKey:      quoterKey,
		allowedQuoters: allowedQuoters,
		logger:         logger,
		limiter:        newClientLimiter(quoteRateLimit, quoteRateWindow),
		audit:          auditLog,
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /v0/quote/{srcChain}/{dstChain}", s.handleQuote)
	s.mux.HandleFunc("GET /v0/estimate/{quote}/{relayInstructions}", s.handleEstimate)
	s.mux.HandleFunc("GET /v0/request/VAAv1/{chain}/{emitter}/{sequence}", s.handleRequestVAAv1)
	s.mux.HandleFunc("GET /v0/request/MM/{chain}/{emitter}/{sequence}/{payload}", s.handleRequestMM)
	s.mux.HandleFunc("GET /v0/status/{id}", s.handleStatus)
	s.handler = s.withTracing(s.withRateLimit(s.mux))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
