// Package config loads the Executor's process configuration: scalar
// settings from environment variables plus a per-chain table from a YAML
// file (spec §6.3). It replaces the teacher's encrypted, USB-wallet
// specific `internal/app/config.go`; environment-variable parsing is
// explicitly out of scope for the service itself (spec §1 "excluded:
// ... environment-variable parsing"), so this loader is deliberately thin.
package config

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

// ChainEntry is one row of the chains.yaml table (spec §6.3: "chainId ->
// {rpc, baseFee, payeeAddress, gasPriceDecimals, nativeDecimals,
// executorAddress, runtimeFamily, signingKeyRef}").
type ChainEntry struct {
	ChainID          uint16 `yaml:"chainId"`
	RPC              string `yaml:"rpc"`
	BaseFee          uint64 `yaml:"baseFee"`
	PayeeAddress     string `yaml:"payeeAddress"`
	GasPriceDecimals uint8  `yaml:"gasPriceDecimals"`
	NativeDecimals   uint8  `yaml:"nativeDecimals"`
	ExecutorAddress  string `yaml:"executorAddress"`
	RuntimeFamily    string `yaml:"runtimeFamily"`
	SigningKeyRef    string `yaml:"signingKeyRef"`
	AssetID          string `yaml:"assetId"`
	EVMChainID       int64  `yaml:"evmChainId"`
}

// chainsFile is the top-level shape of chains.yaml.
type chainsFile struct {
	Chains []ChainEntry `yaml:"chains"`
}

// Config is the Executor's fully-resolved process configuration.
type Config struct {
	QuoterKey    *ecdsa.PrivateKey
	GuardianURL  string
	PriceFeedURL string
	AuditLogPath string
	LogLevel     string
	Port         string
	Chains       map[uint16]ChainEntry

	// EVMRelayKeys and SVMRelayKeys hold the per-chain operational signing key material
	// resolved from each ChainEntry's SigningKeyRef, keyed by chain id.
	// EVM-family entries resolve to *ecdsa.PrivateKey, SVM-family entries
	// to solana.PrivateKey; other families have no relay key since their
	// adapters are capability-negotiation stubs (spec's Tezos/Stellar).
	EVMRelayKeys map[uint16]*ecdsa.PrivateKey
	SVMRelayKeys map[uint16]solana.PrivateKey
}

// Load reads scalar settings from the environment (QUOTER_KEY,
// GUARDIAN_URL, PRICE_FEED_URL, AUDIT_LOG_PATH, LOG_LEVEL, PORT) and the
// per-chain table from chainsPath, then resolves every key material field
// (quoter key plus each chain's relay signing key) into its
// runtime-family-appropriate type.
func Load(chainsPath string) (*Config, error) {
	data, err := os.ReadFile(chainsPath)
	if err != nil {
		return nil, fmt.Errorf("config: read chains file: %w", err)
	}

	var parsed chainsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("config: parse chains file: %w", err)
	}

	cfg := &Config{
		GuardianURL:  os.Getenv("GUARDIAN_URL"),
		PriceFeedURL: os.Getenv("PRICE_FEED_URL"),
		AuditLogPath: os.Getenv("AUDIT_LOG_PATH"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		Port:         envOrDefault("PORT", "8080"),
		Chains:       make(map[uint16]ChainEntry, len(parsed.Chains)),
		EVMRelayKeys: make(map[uint16]*ecdsa.PrivateKey),
		SVMRelayKeys: make(map[uint16]solana.PrivateKey),
	}

	quoterKeyMaterial := os.Getenv("QUOTER_KEY")
	if quoterKeyMaterial == "" {
		return nil, fmt.Errorf("config: QUOTER_KEY is required")
	}
	quoterKey, err := resolveECDSAKey(quoterKeyMaterial)
	if err != nil {
		return nil, fmt.Errorf("config: QUOTER_KEY: %w", err)
	}
	cfg.QuoterKey = quoterKey

	for _, entry := range parsed.Chains {
		cfg.Chains[entry.ChainID] = entry

		if entry.SigningKeyRef == "" {
			continue
		}
		switch entry.RuntimeFamily {
		case "evm":
			key, err := resolveECDSAKey(entry.SigningKeyRef)
			if err != nil {
				return nil, fmt.Errorf("config: chain %d signingKeyRef: %w", entry.ChainID, err)
			}
			cfg.EVMRelayKeys[entry.ChainID] = key
		case "svm":
			key, err := resolveSolanaKey(entry.SigningKeyRef)
			if err != nil {
				return nil, fmt.Errorf("config: chain %d signingKeyRef: %w", entry.ChainID, err)
			}
			cfg.SVMRelayKeys[entry.ChainID] = key
		}
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
