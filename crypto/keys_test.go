package crypto

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, AddressLength)
	addr, err := NewAddress(raw)
	if err != nil {
		t.Fatalf("new address: %v", err)
	}
	encoded := addr.String()
	if !strings.HasPrefix(encoded, AddressPrefix+"1") {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("round trip mismatch: %x", decoded.Bytes())
	}
	// Surrounding whitespace is tolerated.
	if _, err := DecodeAddress("  " + encoded + "\n"); err != nil {
		t.Fatalf("decode with whitespace: %v", err)
	}
}

func TestDecodeAddressRejectsWrongPrefix(t *testing.T) {
	if _, err := DecodeAddress("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"); err == nil {
		t.Fatalf("expected prefix rejection")
	}
	if _, err := DecodeAddress("not-bech32"); err == nil {
		t.Fatalf("expected decode failure")
	}
}

func TestNewAddressLength(t *testing.T) {
	if _, err := NewAddress(make([]byte, 19)); err == nil {
		t.Fatalf("expected length rejection")
	}
	if _, err := NewAddress(make([]byte, 21)); err == nil {
		t.Fatalf("expected length rejection")
	}
}

func TestSignAndRecover(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	digest := ethcrypto.Keccak256([]byte("rewards_claim\n1\n123"))

	sig, err := key.Sign(digest)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	recovered, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if recovered.Raw() != key.PubKey().Address().Raw() {
		t.Fatalf("recovered address does not match signer")
	}

	other := ethcrypto.Keccak256([]byte("different payload"))
	recovered, err = RecoverAddress(other, sig)
	if err == nil && recovered.Raw() == key.PubKey().Address().Raw() {
		t.Fatalf("signature must not verify against a different digest")
	}
}

func TestSignRejectsBadDigest(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := key.Sign([]byte("short")); err == nil {
		t.Fatalf("expected digest length rejection")
	}
	if _, err := RecoverAddress([]byte("short"), nil); err == nil {
		t.Fatalf("expected digest length rejection")
	}
}

func TestKeyFileRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "rewardpool.key")
	if err := SaveKey(key, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadKey(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded.Bytes(), key.Bytes()) {
		t.Fatalf("loaded key differs from saved key")
	}
	if loaded.PubKey().Address() != key.PubKey().Address() {
		t.Fatalf("derived address differs after reload")
	}
}
