package credentials

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/waylink/go-deeplink/pkg/interfaces/credstore"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptedStoreProvider persists credentials encrypted via a Store.
type EncryptedStoreProvider struct {
	store credstore.Store
	aead  cipherSuite
	now   func() time.Time
}

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewEncryptedStoreProvider builds a provider using the given store and key.
func NewEncryptedStoreProvider(store credstore.Store, key []byte) (*EncryptedStoreProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("credentials: store required")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("credentials: encryption key must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStoreProvider{
		store: store,
		aead:  aead,
		now:   time.Now().UTC,
	}, nil
}

func (p *EncryptedStoreProvider) Get(ref Reference) (Value, error) {
	if err := ValidateReference(ref); err != nil {
		return Value{}, err
	}
	ctx := context.Background()
	var rec credstore.Record
	var err error
	if ref.Version != "" {
		rec, err = p.store.GetVersion(ctx, ref.Environment, ref.Name, ref.Version)
	} else {
		rec, err = p.store.GetLatest(ctx, ref.Environment, ref.Name)
	}
	if err != nil {
		return Value{}, translateStoreError(err)
	}
	plain, err := p.aead.Open(nil, rec.Nonce, rec.Cipher, nil)
	if err != nil {
		return Value{}, fmt.Errorf("decrypt: %w", err)
	}
	return Value{
		Data:      plain,
		Version:   rec.Version,
		Retrieved: p.now(),
		Metadata:  rec.Metadata,
	}, nil
}

func (p *EncryptedStoreProvider) Put(ref Reference, value []byte) (string, error) {
	if err := ValidateReference(ref); err != nil {
		return "", err
	}
	if len(value) == 0 {
		return "", ErrEmptyValue
	}
	if ref.Version == "" {
		ref.Version = p.now().Format(time.RFC3339Nano)
	}
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	cipher := p.aead.Seal(nil, nonce, value, nil)
	rec := credstore.Record{
		Environment: ref.Environment,
		Name:        ref.Name,
		Version:     ref.Version,
		Cipher:      cipher,
		Nonce:       nonce,
		Metadata:    map[string]any{"created_at": p.now()},
	}
	if err := p.store.Put(context.Background(), rec); err != nil {
		return "", translateStoreError(err)
	}
	return ref.Version, nil
}

func (p *EncryptedStoreProvider) Delete(ref Reference) error {
	if err := ValidateReference(ref); err != nil {
		return err
	}
	return translateStoreError(p.store.Delete(context.Background(), ref.Environment, ref.Name))
}

func (p *EncryptedStoreProvider) Describe(ref Reference) (map[string]any, error) {
	if err := ValidateReference(ref); err != nil {
		return nil, err
	}
	rec, err := p.store.GetLatest(context.Background(), ref.Environment, ref.Name)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return map[string]any{
		"version": rec.Version,
		"meta":    rec.Metadata,
	}, nil
}

func translateStoreError(err error) error {
	switch err {
	case nil:
		return nil
	case sql.ErrNoRows:
		return ErrNotFound
	default:
		return err
	}
}
