package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/textrsa/internal/model"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresKeyRepository stores key pairs in PostgreSQL.
type PostgresKeyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresKeyRepository создаёт новый PostgreSQL repository.
func NewPostgresKeyRepository(pool *pgxpool.Pool) *PostgresKeyRepository {
	return &PostgresKeyRepository{pool: pool}
}

// Save inserts a new key pair.
// Returns ErrDuplicateLabel if the label is taken.
func (r *PostgresKeyRepository) Save(ctx context.Context, key *model.StoredKey) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO keypairs (id, label, modulus, public_exponent, sealed_private_exponent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.Label, key.Modulus, key.PublicExponent, key.SealedPrivateExponent, key.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("saving key %q: %w", key.Label, ErrDuplicateLabel)
		}
		return fmt.Errorf("saving key %q: %w", key.Label, err)
	}
	return nil
}

// Get returns the key pair with the given ID.
// Возвращает nil, nil если ключ не найден.
func (r *PostgresKeyRepository) Get(ctx context.Context, id uuid.UUID) (*model.StoredKey, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, label, modulus, public_exponent, sealed_private_exponent, created_at
		 FROM keypairs WHERE id = $1`, id,
	)
	key, err := scanPostgresKey(row)
	if err != nil {
		return nil, fmt.Errorf("querying key %s: %w", id, err)
	}
	return key, nil
}

// GetByLabel returns the key pair with the given label, or nil, nil.
func (r *PostgresKeyRepository) GetByLabel(ctx context.Context, label string) (*model.StoredKey, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, label, modulus, public_exponent, sealed_private_exponent, created_at
		 FROM keypairs WHERE label = $1`, label,
	)
	key, err := scanPostgresKey(row)
	if err != nil {
		return nil, fmt.Errorf("querying key %q: %w", label, err)
	}
	return key, nil
}

// List returns all key pairs ordered by creation time.
func (r *PostgresKeyRepository) List(ctx context.Context) ([]model.StoredKey, error) {
	rows, err := r.pool.Query(ctx,
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
func (r *PostgresKeyRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM keypairs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting key %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanPostgresKey(row pgx.Row) (*model.StoredKey, error) {
	var k model.StoredKey
	err := row.Scan(&k.ID, &k.Label, &k.Modulus, &k.PublicExponent, &k.SealedPrivateExponent, &k.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}
