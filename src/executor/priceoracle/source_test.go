package priceoracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPSource_FetchUSDPrices_ParsesDecimalStrings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"eth":"3000.12345678901","sol":"150"}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, nil)
	prices, err := src.FetchUSDPrices(context.Background(), []AssetID{"eth", "sol"})
	require.NoError(t, err)

	require.Equal(t, "30001234567890", prices["eth"].String())
	require.Equal(t, "1500000000000", prices["sol"].String())
}

func TestHTTPSource_FetchUSDPrices_SkipsMissingIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"eth":"3000"}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, nil)
	prices, err := src.FetchUSDPrices(context.Background(), []AssetID{"eth", "missing"})
	require.NoError(t, err)

	require.Contains(t, prices, AssetID("eth"))
	require.NotContains(t, prices, AssetID("missing"))
}

func TestHTTPSource_FetchUSDPrices_NonOKStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, nil)
	_, err := src.FetchUSDPrices(context.Background(), []AssetID{"eth"})
	require.Error(t, err)
}

func TestParseDecimalFixedPoint(t *testing.T) {
	v, err := parseDecimalFixedPoint("1.5", 10)
	require.NoError(t, err)
	require.Equal(t, "15000000000", v.String())

	v, err = parseDecimalFixedPoint("42", 10)
	require.NoError(t, err)
	require.Equal(t, "420000000000", v.String())
}
