package httpapi

import (
	"errors"
	"net/http"

	"github.com/example/executor/src/executor/chainadapter"
	"github.com/example/executor/src/executor/codec"
	"github.com/example/executor/src/executor/priceoracle"
	"github.com/example/executor/src/executor/quote"
)

// ChainUnsupportedError reports a chain id outside the configured
// source/destination sets (spec §7 "ChainUnsupportedError").
type ChainUnsupportedError struct {
	ChainID uint16
}

func (e *ChainUnsupportedError) Error() string {
	return "chain not configured"
}

// writeError maps an error to the HTTP status taxonomy spec §7 describes
// and writes a plain-text body, never JSON (spec §6.2 "Error bodies are
// plain-text with HTTP status").
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var decodeErr *codec.DecodeError
	var unsupportedInstrErr *codec.UnsupportedInstructionError
	var quoteErr *quote.QuoteError
	var chainErr *ChainUnsupportedError
	var priceErr *priceoracle.ExpiredPriceError
	var adapterErr *chainadapter.AdapterError

	switch {
	case errors.As(err, &decodeErr), errors.As(err, &unsupportedInstrErr):
		status = http.StatusBadRequest
	case errors.As(err, &quoteErr):
		status = http.StatusBadRequest
	case errors.As(err, &chainErr):
		status = http.StatusBadRequest
	case errors.As(err, &priceErr):
		status = http.StatusBadRequest
	case errors.As(err, &adapterErr):
		if adapterErr.Classification == chainadapter.Terminal {
			status = http.StatusBadGateway
		} else {
			status = http.StatusServiceUnavailable
		}
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	}

	http.Error(w, err.Error(), status)
}

var errNotFound = errors.New("not found")
