// Package priceoracle implements the Executor's short-lived USD price
// cache (spec §4.2, L2): a TTL-guarded map of asset id to USD price, fed
// by an external quote source and consumed by the quote engine (L1).
package priceoracle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// priceTTL is how long a fetched price remains fresh before updatePriceCache
// treats it as expired and re-fetches it (spec §4.2).
const priceTTL = 5 * time.Minute

// AssetID identifies a priceable asset, e.g. a chain's native token.
type AssetID string

// ExpiredPriceError reports that getPrices could not return a fresh price
// for one of the requested asset ids, even after triggering a refresh
// (spec §4.2).
type ExpiredPriceError struct {
	AssetID AssetID
}

func (e *ExpiredPriceError) Error() string {
	return fmt.Sprintf("priceoracle: price for %q is expired", e.AssetID)
}

// Source fetches USD prices for a set of asset ids from an external quote
// provider. Returned prices are USD fixed-point with 10 fractional decimals
// (spec §4.2), matching the SignedQuote price fields' scale.
type Source interface {
	FetchUSDPrices(ctx context.Context, ids []AssetID) (map[AssetID]*big.Int, error)
}

type priceEntry struct {
	usd    *big.Int
	expiry time.Time
}

// Cache is the process-wide price cache. Safe for concurrent use; entries
// are copy-on-read to prevent callers from mutating cached state.
type Cache struct {
	mu      sync.Mutex
	entries map[AssetID]priceEntry
	source  Source
}

// New creates an empty price cache backed by source.
func New(source Source) *Cache {
	return &Cache{
		entries: make(map[AssetID]priceEntry),
		source:  source,
	}
}

// UpdatePriceCache groups the ids whose entry is missing or expired, fetches
// them from the configured Source, and stores each with expiry = now + 5
// minutes (spec §4.2). ids already fresh are left untouched.
func (c *Cache) UpdatePriceCache(ctx context.Context, ids []AssetID) error {
	now := time.Now()

	c.mu.Lock()
	var stale []AssetID
	for _, id := range ids {
		entry, ok := c.entries[id]
		if !ok || now.After(entry.expiry) {
			stale = append(stale, id)
		}
	}
	c.mu.Unlock()

	if len(stale) == 0 {
		return nil
	}

	fetched, err := c.source.FetchUSDPrices(ctx, stale)
	if err != nil {
		return fmt.Errorf("priceoracle: fetch: %w", err)
	}

	expiry := time.Now().Add(priceTTL)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range stale {
		usd, ok := fetched[id]
		if !ok {
			continue
		}
		c.entries[id] = priceEntry{usd: new(big.Int).Set(usd), expiry: expiry}
	}
	return nil
}

// GetPrices triggers UpdatePriceCache for srcID and dstID, then returns
// both USD prices. Fails with ExpiredPriceError if either is still expired
// after the refresh attempt (spec §4.2).
func (c *Cache) GetPrices(ctx context.Context, srcID, dstID AssetID) (srcUSD, dstUSD *big.Int, err error) {
	if err := c.UpdatePriceCache(ctx, []AssetID{srcID, dstID}); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	srcEntry, ok := c.entries[srcID]
	if !ok || now.After(srcEntry.expiry) {
		return nil, nil, &ExpiredPriceError{AssetID: srcID}
	}
	dstEntry, ok := c.entries[dstID]
	if !ok || now.After(dstEntry.expiry) {
		return nil, nil, &ExpiredPriceError{AssetID: dstID}
	}

	return new(big.Int).Set(srcEntry.usd), new(big.Int).Set(dstEntry.usd), nil
}
