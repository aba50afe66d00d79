package secrets

import (
	"fmt"
	"sync"
	"time"
)

// StaticProvider keeps secrets in plain memory. Intended for tests and demos;
// production hosts should prefer EncryptedProvider or their own Provider.
type StaticProvider struct {
	mu    sync.RWMutex
	store map[Reference]SecretValue
}

var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider builds an in-memory provider seeded with optional values.
func NewStaticProvider(seed map[string]string) *StaticProvider {
	p := &StaticProvider{store: make(map[Reference]SecretValue)}
	for key, val := range seed {
		p.store[Reference{Key: key, Version: "1"}] = SecretValue{
			Data:      []byte(val),
			Version:   "1",
			Retrieved: time.Now(),
		}
	}
	return p
}

func (p *StaticProvider) Get(ref Reference) (SecretValue, error) {
	if err := ref.Validate(); err != nil {
		return SecretValue{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if ref.Version != "" {
		if val, ok := p.store[ref]; ok {
			return val, nil
		}
		return SecretValue{}, ErrNotFound
	}
	// Latest version wins when none is requested.
	var latest SecretValue
	found := false
	for k, v := range p.store {
		if k.Key == ref.Key && (!found || v.Version > latest.Version) {
			latest = v
			found = true
		}
	}
	if !found {
		return SecretValue{}, ErrNotFound
	}
	return latest, nil
}

func (p *StaticProvider) Put(ref Reference, value []byte) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	version := ref.Version
	if version == "" {
		version = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	p.store[Reference{Key: ref.Key, Version: version}] = SecretValue{
		Data:      append([]byte(nil), value...),
		Version:   version,
		Retrieved: time.Now(),
	}
	return version, nil
}

func (p *StaticProvider) Delete(ref Reference) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ref.Version != "" {
		delete(p.store, ref)
		return nil
	}
	for k := range p.store {
		if k.Key == ref.Key {
			delete(p.store, k)
		}
	}
	return nil
}
