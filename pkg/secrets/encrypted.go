package secrets

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// Store is the minimal KV surface the encrypted provider persists through.
// MemoryStore satisfies it; hosts can back it with keychain/file storage.
type Store interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// MemoryStore keeps ciphertext in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), val...), true, nil
}

func (s *MemoryStore) Save(key string, value []byte) error {
	s.mu.Lock()
	s.data[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// EncryptedProvider seals values with XChaCha20-Poly1305 before handing them
// to the Store. The reference key doubles as AEAD additional data so a value
// copied between keys fails to open.
type EncryptedProvider struct {
	store Store
	aead  cipherSuite
	now   func() time.Time
}

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

var _ Provider = (*EncryptedProvider)(nil)

// NewEncryptedProvider builds a provider over the given store and key.
func NewEncryptedProvider(store Store, key []byte) (*EncryptedProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("secrets: encrypted provider requires a store")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("secrets: encryption key must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedProvider{store: store, aead: aead, now: time.Now}, nil
}

func (p *EncryptedProvider) Get(ref Reference) (SecretValue, error) {
	if err := ref.Validate(); err != nil {
		return SecretValue{}, err
	}
	sealed, ok, err := p.store.Load(storeKey(ref))
	if err != nil {
		return SecretValue{}, err
	}
	if !ok {
		return SecretValue{}, ErrNotFound
	}
	nonceSize := p.aead.NonceSize()
	if len(sealed) < nonceSize {
		return SecretValue{}, fmt.Errorf("secrets: sealed value too short for %q", ref.Key)
	}
	plain, err := p.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], []byte(ref.Key))
	if err != nil {
		return SecretValue{}, fmt.Errorf("secrets: open %q: %w", ref.Key, err)
	}
	return SecretValue{Data: plain, Version: ref.Version, Retrieved: p.now()}, nil
}

func (p *EncryptedProvider) Put(ref Reference, value []byte) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := p.aead.Seal(nonce, nonce, value, []byte(ref.Key))
	if err := p.store.Save(storeKey(ref), sealed); err != nil {
		return "", err
	}
	return ref.Version, nil
}

func (p *EncryptedProvider) Delete(ref Reference) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	return p.store.Delete(storeKey(ref))
}

func storeKey(ref Reference) string {
	if ref.Version == "" {
		return ref.Key
	}
	return ref.Key + "@" + ref.Version
}
