package credentials

import "time"

// Reference identifies a stored credential. Environment matches the key
// environment segment (live or test); an empty Version means latest.
type Reference struct {
	Environment string
	Name        string
	Version     string
}

// Value carries decrypted credential material.
type Value struct {
	Data      []byte
	Version   string
	Retrieved time.Time
	Metadata  map[string]any
}

// Provider stores and resolves credential material.
type Provider interface {
	Get(ref Reference) (Value, error)
	Put(ref Reference, value []byte) (string, error)
	Delete(ref Reference) error
	Describe(ref Reference) (map[string]any, error) // non-sensitive metadata only
}
