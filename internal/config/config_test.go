package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func writeChainsFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_ParsesChainsAndQuoterKey(t *testing.T) {
	privKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := hex.EncodeToString(crypto.FromECDSA(privKey))

	t.Setenv("QUOTER_KEY", hexKey)
	t.Setenv("GUARDIAN_URL", "https://guardian.example/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")

	path := writeChainsFile(t, `
chains:
  - chainId: 1
    rpc: "https://eth.example"
    baseFee: 100
    gasPriceDecimals: 9
    nativeDecimals: 18
    runtimeFamily: "evm"
    assetId: "eth"
  - chainId: 2
    rpc: "https://solana.example"
    baseFee: 200
    gasPriceDecimals: 9
    nativeDecimals: 9
    runtimeFamily: "svm"
    assetId: "sol"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://guardian.example/", cfg.GuardianURL)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "9090", cfg.Port)
	require.Len(t, cfg.Chains, 2)
	require.Equal(t, "evm", cfg.Chains[1].RuntimeFamily)
	require.Equal(t, "svm", cfg.Chains[2].RuntimeFamily)
	require.Equal(t, crypto.PubkeyToAddress(privKey.PublicKey), crypto.PubkeyToAddress(cfg.QuoterKey.PublicKey))
}

func TestLoad_MissingQuoterKeyErrors(t *testing.T) {
	t.Setenv("QUOTER_KEY", "")
	path := writeChainsFile(t, "chains: []\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ResolvesEVMRelayKeyFromHex(t *testing.T) {
	quoterKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	relayKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	t.Setenv("QUOTER_KEY", hex.EncodeToString(crypto.FromECDSA(quoterKey)))

	path := writeChainsFile(t, `
chains:
  - chainId: 1
    runtimeFamily: "evm"
    signingKeyRef: "`+hex.EncodeToString(crypto.FromECDSA(relayKey))+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Contains(t, cfg.EVMRelayKeys, uint16(1))
	require.Equal(t, crypto.PubkeyToAddress(relayKey.PublicKey), crypto.PubkeyToAddress(cfg.EVMRelayKeys[1].PublicKey))
}
