package secrets

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStaticProviderRoundTrip(t *testing.T) {
	p := NewStaticProvider(map[string]string{"branch_secret": "secret_live_abcdef"})

	val, err := p.Get(Ref("branch_secret"))
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if val.String() != "secret_live_abcdef" {
		t.Fatalf("unexpected value: %q", val.String())
	}

	if _, err := p.Get(Ref("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := p.Get(Reference{}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestStaticProviderLatestVersionWins(t *testing.T) {
	p := NewStaticProvider(nil)
	if _, err := p.Put(Reference{Key: "k", Version: "1"}, []byte("old")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := p.Put(Reference{Key: "k", Version: "2"}, []byte("new")); err != nil {
		t.Fatalf("put: %v", err)
	}
	val, err := p.Get(Ref("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val.String() != "new" {
		t.Fatalf("expected latest version, got %q", val.String())
	}
}

func TestEncryptedProviderRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	p, err := NewEncryptedProvider(NewMemoryStore(), key)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := p.Put(Ref("branch_secret"), []byte("secret_live_abcdef")); err != nil {
		t.Fatalf("put: %v", err)
	}
	val, err := p.Get(Ref("branch_secret"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val.String() != "secret_live_abcdef" {
		t.Fatalf("unexpected plaintext: %q", val.String())
	}

	if err := p.Delete(Ref("branch_secret")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := p.Get(Ref("branch_secret")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEncryptedProviderBindsValueToKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	store := NewMemoryStore()
	p, err := NewEncryptedProvider(store, key)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, err := p.Put(Ref("a"), []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Copy ciphertext under a different key; AEAD additional data must
	// reject it.
	sealed, ok, _ := store.Load("a")
	if !ok {
		t.Fatal("expected sealed value in store")
	}
	if err := store.Save("b", sealed); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := p.Get(Ref("b")); err == nil {
		t.Fatal("expected open to fail for relocated ciphertext")
	}
}

func TestEncryptedProviderRejectsBadKeySize(t *testing.T) {
	if _, err := NewEncryptedProvider(NewMemoryStore(), []byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestSimpleResolver(t *testing.T) {
	p := NewStaticProvider(map[string]string{"branch_key": "key_live_xyz"})
	resolver := SimpleResolver{Provider: p}

	got, err := resolver.Resolve(Ref("branch_key"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one result, got %d", len(got))
	}

	if _, err := (SimpleResolver{}).Resolve(Ref("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestMaskHidesMiddle(t *testing.T) {
	masked := Mask("secret_live_abcdef")
	if masked == "secret_live_abcdef" {
		t.Fatal("expected value to be masked")
	}
	if !strings.HasPrefix(masked, "se") || !strings.HasSuffix(masked, "ef") {
		t.Fatalf("expected ends preserved, got %q", masked)
	}
	if Mask("") != "" {
		t.Fatal("expected empty input to stay empty")
	}
}
