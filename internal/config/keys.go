package config

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/anyproto/go-slip10"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"

	"github.com/example/executor/internal/services/hdkey"
)

// evmDerivationPath is the BIP44 path for Ethereum's coin type (spec §6.3
// "signingKeyRef"), matching the convention the teacher's hdkey service
// already derives other EVM-family addresses under.
const evmDerivationPath = "m/44'/60'/0'/0/0"

// solanaDerivationPath is SLIP-10's Ed25519 convention for Solana's coin
// type (501), hardened-only as SLIP-10 requires for Ed25519.
const solanaDerivationPath = "m/44'/501'/0'"

// resolveECDSAKey turns key material -- either a 0x-prefixed/raw hex
// secp256k1 private key or a BIP-39 mnemonic -- into an *ecdsa.PrivateKey.
// A mnemonic is recognized by containing a space; a bare key never does.
func resolveECDSAKey(material string) (*ecdsa.PrivateKey, error) {
	if looksLikeMnemonic(material) {
		seed := bip39.NewSeed(material, "")
		svc := hdkey.NewHDKeyService()
		master, err := svc.NewMasterKey(seed)
		if err != nil {
			return nil, fmt.Errorf("derive master key: %w", err)
		}
		child, err := svc.DerivePath(master, evmDerivationPath)
		if err != nil {
			return nil, fmt.Errorf("derive path %s: %w", evmDerivationPath, err)
		}
		privBytes, err := svc.GetPrivateKey(child)
		if err != nil {
			return nil, fmt.Errorf("extract private key: %w", err)
		}
		return crypto.ToECDSA(privBytes)
	}

	hexKey := strings.TrimPrefix(strings.TrimPrefix(material, "0x"), "0X")
	privBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("not valid hex: %w", err)
	}
	return crypto.ToECDSA(privBytes)
}

// resolveSolanaKey turns key material -- either a base58-encoded Solana
// keypair or a BIP-39 mnemonic -- into a solana.PrivateKey.
//
// A mnemonic is run through SLIP-10 rather than BIP32 (spec's pack
// grounding: the teacher's own `internal/services/address/tezos.go` uses
// exactly this BIP32-seed-into-SLIP-10 handoff for its other Ed25519
// family, Tezos) since Solana keys are Ed25519, which plain BIP32 cannot
// derive.
func resolveSolanaKey(material string) (solana.PrivateKey, error) {
	if looksLikeMnemonic(material) {
		seed := bip39.NewSeed(material, "")
		svc := hdkey.NewHDKeyService()
		master, err := svc.NewMasterKey(seed)
		if err != nil {
			return nil, fmt.Errorf("derive master key: %w", err)
		}
		privBytes, err := svc.GetPrivateKey(master)
		if err != nil {
			return nil, fmt.Errorf("extract seed material: %w", err)
		}
		node, err := slip10.DeriveForPath(solanaDerivationPath, privBytes)
		if err != nil {
			return nil, fmt.Errorf("derive SLIP-10 path %s: %w", solanaDerivationPath, err)
		}
		_, edPriv := node.Keypair()
		return solana.PrivateKey(edPriv), nil
	}

	return solana.PrivateKeyFromBase58(material)
}

func looksLikeMnemonic(material string) bool {
	return strings.Contains(strings.TrimSpace(material), " ")
}
