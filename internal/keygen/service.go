// Package keygen generates textbook RSA key pairs on request, caches the
// derivations and persists results with the private exponent sealed.
package keygen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/google/uuid"

	"github.com/udisondev/textrsa/internal/crypto"
	"github.com/udisondev/textrsa/internal/model"
	"github.com/udisondev/textrsa/internal/numtheory"
)

const (
	defaultCacheSize   = 128
	defaultConcurrency = 4
)

// ErrKeyNotFound is returned by Load when no key pair matches.
var ErrKeyNotFound = errors.New("key not found")

// Store persists generated key pairs.
type Store interface {
	Save(ctx context.Context, key *model.StoredKey) error
	Get(ctx context.Context, id uuid.UUID) (*model.StoredKey, error)
	GetByLabel(ctx context.Context, label string) (*model.StoredKey, error)
}

// Sealer protects the private exponent at rest.
type Sealer interface {
	Seal(d int64) ([]byte, error)
	Unseal(sealed []byte) (int64, error)
}

// Request is a labelled set of key parameters.
type Request struct {
	Label string
	P     int64
	Q     int64
	E     int64
}

type cacheKey struct {
	p, q, e int64
}

// Option configures a Service.
type Option func(*Service)

// WithCacheSize sets the LRU capacity for derived key pairs.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// WithConcurrency limits the number of requests Batch processes at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides time.Now for stored timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service is safe for concurrent use. Close releases the cache janitor.
type Service struct {
	store       Store
	sealer      Sealer
	cache       *cache.Cache[cacheKey, crypto.KeyPair]
	stopJanitor context.CancelFunc

	cacheSize   int
	concurrency int
	now         func() time.Time
}

// NewService creates a Service over the given store and sealer.
func NewService(store Store, sealer Sealer, opts ...Option) *Service {
	s := &Service{
		store:       store,
		sealer:      sealer,
		cacheSize:   defaultCacheSize,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopJanitor = cancel
	s.cache = cache.NewContext(ctx, cache.AsLRU[cacheKey, crypto.KeyPair](lru.WithCapacity(s.cacheSize)))
	return s
}

// Close stops the cache's background janitor. The service stays usable
// afterwards, expired entries are just no longer swept.
func (s *Service) Close() {
	s.stopJanitor()
}

// Generate derives the key pair for req, reusing a cached derivation for
// the same (p, q, e). Rejected parameters are not cached.
func (s *Service) Generate(ctx context.Context, req Request) (crypto.KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return crypto.KeyPair{}, err
	}

	ck := cacheKey{p: req.P, q: req.Q, e: req.E}
	if kp, ok := s.cache.Get(ck); ok {
		slog.Debug("key pair cache hit", "label", req.Label, "n", kp.N)
		return kp, nil
	}

	kp, err := crypto.GenerateKeys(req.P, req.Q, req.E)
	if err != nil {
		slog.Debug("key parameters rejected",
			"label", req.Label,
			"p", req.P, "p_prime", numtheory.IsPrime(req.P),
			"q", req.Q, "q_prime", numtheory.IsPrime(req.Q),
			"e", req.E,
			"err", err,
		)
		return crypto.KeyPair{}, fmt.Errorf("generating key %q: %w", req.Label, err)
	}

	s.cache.Set(ck, kp)
	return kp, nil
}

// Store seals the private exponent of kp and persists it under label.
func (s *Service) Store(ctx context.Context, label string, kp crypto.KeyPair) (uuid.UUID, error) {
	sealed, err := s.sealer.Seal(kp.D)
	if err != nil {
		return uuid.Nil, fmt.Errorf("storing key %q: %w", label, err)
	}

	key := &model.StoredKey{
		ID:                    uuid.New(),
		Label:                 label,
		Modulus:               kp.N,
		PublicExponent:        kp.E,
		SealedPrivateExponent: sealed,
		CreatedAt:             s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.store.Save(ctx, key); err != nil {
		return uuid.Nil, fmt.Errorf("storing key %q: %w", label, err)
	}

	slog.Info("key pair stored", "id", key.ID, "label", label, "n", kp.N, "e", kp.E)
	return key.ID, nil
}

// GenerateAndStore derives the key pair for req and persists it.
func (s *Service) GenerateAndStore(ctx context.Context, req Request) (uuid.UUID, crypto.KeyPair, error) {
	kp, err := s.Generate(ctx, req)
	if err != nil {
		return uuid.Nil, crypto.KeyPair{}, err
	}

	id, err := s.Store(ctx, req.Label, kp)
	if err != nil {
		return uuid.Nil, crypto.KeyPair{}, err
	}
	return id, kp, nil
}

// Load reads a stored key pair and unseals its private exponent.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (crypto.KeyPair, error) {
	key, err := s.store.Get(ctx, id)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("loading key %s: %w", id, err)
	}
	if key == nil {
		return crypto.KeyPair{}, fmt.Errorf("loading key %s: %w", id, ErrKeyNotFound)
	}
	return s.unseal(key)
}

// LoadByLabel is Load keyed by label.
func (s *Service) LoadByLabel(ctx context.Context, label string) (crypto.KeyPair, error) {
	key, err := s.store.GetByLabel(ctx, label)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("loading key %q: %w", label, err)
	}
	if key == nil {
		return crypto.KeyPair{}, fmt.Errorf("loading key %q: %w", label, ErrKeyNotFound)
	}
	return s.unseal(key)
}

func (s *Service) unseal(key *model.StoredKey) (crypto.KeyPair, error) {
	d, err := s.sealer.Unseal(key.SealedPrivateExponent)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("unsealing key %q: %w", key.Label, err)
	}
	return crypto.KeyPair{N: key.Modulus, E: key.PublicExponent, D: d}, nil
}
