package bunrepo

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"github.com/waylink/go-deeplink/pkg/interfaces/credstore"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:credentials"`

	ID          int64          `bun:",pk,autoincrement"`
	Environment string         `bun:",notnull,unique:credential_identity"`
	Name        string         `bun:",notnull,unique:credential_identity"`
	Version     string         `bun:",notnull,unique:credential_identity"`
	Cipher      []byte         `bun:",notnull"`
	Nonce       []byte         `bun:",notnull"`
	Metadata    map[string]any `bun:",type:jsonb"`
	CreatedAt   time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt   bun.NullTime   `bun:",soft_delete,nullzero"`
}

// CredentialStore persists encrypted API key material.
type CredentialStore struct {
	db *bun.DB
}

var _ credstore.Store = (*CredentialStore)(nil)

func NewCredentialStore(db *bun.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

func (s *CredentialStore) Put(ctx context.Context, rec credstore.Record) error {
	model := toCredentialRecord(rec)
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (environment, name, version) DO UPDATE").
		Set("cipher = EXCLUDED.cipher").
		Set("nonce = EXCLUDED.nonce").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func (s *CredentialStore) GetLatest(ctx context.Context, environment, name string) (credstore.Record, error) {
	var rec credentialRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("environment = ? AND name = ?", environment, name).
		Where("deleted_at IS NULL").
		OrderExpr("version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return credstore.Record{}, err
	}
	return fromCredentialRecord(rec), nil
}

func (s *CredentialStore) GetVersion(ctx context.Context, environment, name, version string) (credstore.Record, error) {
	var rec credentialRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("environment = ? AND name = ? AND version = ?", environment, name, version).
		Where("deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return credstore.Record{}, err
	}
	return fromCredentialRecord(rec), nil
}

func (s *CredentialStore) Delete(ctx context.Context, environment, name string) error {
	_, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("environment = ? AND name = ?", environment, name).
		Exec(ctx)
	return err
}

func (s *CredentialStore) List(ctx context.Context, environment, name string) ([]credstore.Record, error) {
	var recs []credentialRecord
	query := s.db.NewSelect().Model(&recs).Where("deleted_at IS NULL")
	if environment != "" {
		query = query.Where("environment = ?", environment)
	}
	if name != "" {
		query = query.Where("name = ?", name)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	results := make([]credstore.Record, 0, len(recs))
	for _, r := range recs {
		results = append(results, fromCredentialRecord(r))
	}
	return results, nil
}

func toCredentialRecord(rec credstore.Record) *credentialRecord {
	return &credentialRecord{
		Environment: rec.Environment,
		Name:        rec.Name,
		Version:     rec.Version,
		Cipher:      rec.Cipher,
		Nonce:       rec.Nonce,
		Metadata:    rec.Metadata,
	}
}

func fromCredentialRecord(rec credentialRecord) credstore.Record {
	return credstore.Record{
		Environment: rec.Environment,
		Name:        rec.Name,
		Version:     rec.Version,
		Cipher:      rec.Cipher,
		Nonce:       rec.Nonce,
		Metadata:    rec.Metadata,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		DeletedAt:   rec.DeletedAt,
	}
}
