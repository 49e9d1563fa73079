package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/udisondev/textrsa/internal/model"
)

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", path, err)
	}
	return sqlDB, nil
}

// SQLiteKeyRepository stores key pairs in a SQLite database.
type SQLiteKeyRepository struct {
	db *sql.DB
}

// NewSQLiteKeyRepository wraps an open SQLite handle.
func NewSQLiteKeyRepository(db *sql.DB) *SQLiteKeyRepository {
	return &SQLiteKeyRepository{db: db}
}

// Save inserts a new key pair.
// Returns ErrDuplicateLabel if the label is taken.
func (r *SQLiteKeyRepository) Save(ctx context.Context, key *model.StoredKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO keypairs (id, label, modulus, public_exponent, sealed_private_exponent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key.ID.String(), key.Label, key.Modulus, key.PublicExponent, key.SealedPrivateExponent, key.CreatedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("saving key %q: %w", key.Label, ErrDuplicateLabel)
		}
		return fmt.Errorf("saving key %q: %w", key.Label, err)
	}
	return nil
}

// Get returns the key pair with the given ID, or nil, nil.
func (r *SQLiteKeyRepository) Get(ctx context.Context, id uuid.UUID) (*model.StoredKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, label, modulus, public_exponent, sealed_private_exponent, created_at
		 FROM keypairs WHERE id = ?`, id.String(),
	)
	key, err := scanSQLiteKey(row)
	if err != nil {
		return nil, fmt.Errorf("querying key %s: %w", id, err)
	}
	return key, nil
}

// GetByLabel returns the key pair with the given label, or nil, nil.
func (r *SQLiteKeyRepository) GetByLabel(ctx context.Context, label string) (*model.StoredKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, label, modulus, public_exponent, sealed_private_exponent, created_at
		 FROM keypairs WHERE label = ?`, label,
	)
	key, err := scanSQLiteKey(row)
	if err != nil {
		return nil, fmt.Errorf("querying key %q: %w", label, err)
	}
	return key, nil
}

// List returns all key pairs ordered by creation time.
func (r *SQLiteKeyRepository) List(ctx context.Context) ([]model.StoredKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, modulus, public_exponent, sealed_private_exponent, created_at
		 FROM keypairs ORDER BY created_at, label`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []model.StoredKey
	for rows.Next() {
		var k model.StoredKey
		if err := rows.Scan(&k.ID, &k.Label, &k.Modulus, &k.PublicExponent, &k.SealedPrivateExponent, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// Delete removes a key pair. Reports whether a row was deleted.
func (r *SQLiteKeyRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM keypairs WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("deleting key %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting key %s: %w", id, err)
	}
	return n > 0, nil
}

func scanSQLiteKey(row *sql.Row) (*model.StoredKey, error) {
	var k model.StoredKey
	err := row.Scan(&k.ID, &k.Label, &k.Modulus, &k.PublicExponent, &k.SealedPrivateExponent, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}
