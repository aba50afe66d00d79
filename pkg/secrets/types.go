// Package secrets resolves the attribution credentials (branch key/secret)
// from a pluggable provider so they never live as literals in host code.
package secrets

import (
	"errors"
	"strings"
	"time"
)

// Reference identifies a secret by key and optional version. An empty
// version resolves to the latest stored value.
type Reference struct {
	Key     string
	Version string
}

// Ref builds an unversioned reference.
func Ref(key string) Reference {
	return Reference{Key: key}
}

// Validate rejects references without a key.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return ErrInvalidReference
	}
	return nil
}

// SecretValue carries a resolved secret payload.
type SecretValue struct {
	Data      []byte
	Version   string
	Retrieved time.Time
}

// String exposes the payload as a string. Never log the result directly;
// use MaskValues for diagnostics.
func (v SecretValue) String() string {
	return string(v.Data)
}

// Provider stores and resolves secret values.
type Provider interface {
	Get(ref Reference) (SecretValue, error)
	Put(ref Reference, value []byte) (version string, err error)
	Delete(ref Reference) error
}

// Resolver batches resolution of references.
type Resolver interface {
	Resolve(refs ...Reference) (map[Reference]SecretValue, error)
}

var (
	// ErrNotFound signals that no value exists for the reference.
	ErrNotFound = errors.New("secrets: not found")
	// ErrInvalidReference signals a reference without a key.
	ErrInvalidReference = errors.New("secrets: invalid reference")
	// ErrUnsupported signals a resolver without a backing provider.
	ErrUnsupported = errors.New("secrets: no provider configured")
)
