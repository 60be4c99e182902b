package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Credentials is a decrypted credential bundle for one bucket.
type Credentials struct {
	Name            string
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// SaveCredentials upserts the credential row for the named bucket and
// returns its row id. The access key id and secret are encrypted before they
// reach the database; saving an existing name replaces all five fields but
// keeps the original created_at, so re-saving an old bucket does not make it
// current.
func (s *Store) SaveCredentials(ctx context.Context, name, accountID, accessKeyID, secretAccessKey, endpoint string) (int64, error) {
	encKey, err := s.codec.Encrypt(accessKeyID)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt access key: %w", err)
	}
	encSecret, err := s.codec.Encrypt(secretAccessKey)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt secret key: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO buckets (name, account_id, access_key_id, secret_access_key, endpoint)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		     account_id = excluded.account_id,
		     access_key_id = excluded.access_key_id,
		     secret_access_key = excluded.secret_access_key,
		     endpoint = excluded.endpoint`,
		name, accountID, encKey, encSecret, endpoint,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save credentials: %w", err)
	}
	return res.LastInsertId()
}

// LoadCredentials returns the most recently saved credential bundle with the
// key fields decrypted, or nil when no credentials have been saved yet.
func (s *Store) LoadCredentials(ctx context.Context) (*Credentials, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, account_id, access_key_id, secret_access_key, endpoint
		 FROM buckets ORDER BY created_at DESC, id DESC LIMIT 1`,
	)

	var c Credentials
	err := row.Scan(&c.Name, &c.AccountID, &c.AccessKeyID, &c.SecretAccessKey, &c.Endpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	if c.AccessKeyID, err = s.codec.Decrypt(c.AccessKeyID); err != nil {
		return nil, fmt.Errorf("failed to decrypt access key: %w", err)
	}
	if c.SecretAccessKey, err = s.codec.Decrypt(c.SecretAccessKey); err != nil {
		return nil, fmt.Errorf("failed to decrypt secret key: %w", err)
	}
	return &c, nil
}

// CurrentBucket returns the name of the most recent credential row. The bool
// is false when no credentials exist.
func (s *Store) CurrentBucket(ctx context.Context) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name FROM buckets ORDER BY created_at DESC, id DESC LIMIT 1`,
	)

	var name string
	err := row.Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load current bucket: %w", err)
	}
	return name, true, nil
}

// CurrentBucketID resolves the row id of the current bucket for scoping
// rows on dependent tables. The bool is false when no credentials exist.
func (s *Store) CurrentBucketID(ctx context.Context) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM buckets ORDER BY created_at DESC, id DESC LIMIT 1`,
	)

	var id int64
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load current bucket: %w", err)
	}
	return id, true, nil
}
