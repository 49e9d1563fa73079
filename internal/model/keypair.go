package model

import (
	"time"

	"github.com/google/uuid"
)

// StoredKey is a generated key pair persisted in the key store.
// The private exponent is kept only in sealed form.
type StoredKey struct {
	ID                    uuid.UUID
	Label                 string
	Modulus               int64
	PublicExponent        int64
	SealedPrivateExponent []byte
	CreatedAt             time.Time
}
