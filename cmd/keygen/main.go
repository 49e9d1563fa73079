// Command keygen generates the key pairs listed in its YAML config and
// persists them, private exponents sealed, in PostgreSQL or SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/udisondev/textrsa/internal/config"
	"github.com/udisondev/textrsa/internal/crypto"
	"github.com/udisondev/textrsa/internal/db"
	"github.com/udisondev/textrsa/internal/keygen"
	"github.com/udisondev/textrsa/internal/model"
)

const ConfigPath = "config/keygen.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	cfgPath := ConfigPath
	if p := os.Getenv("TEXTRSA_CONFIG"); p != "" {
		cfgPath = p
	}

	if err := run(ctx, cfgPath); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.LoadKeyGen(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("config loaded", "path", cfgPath, "driver", cfg.Store.Driver, "keys", len(cfg.Keys))

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	sealKey, err := cfg.SealKeyBytes()
	if err != nil {
		return err
	}
	sealer, err := crypto.NewSealer(sealKey)
	if err != nil {
		return err
	}

	svc := keygen.NewService(store, sealer,
		keygen.WithCacheSize(cfg.CacheSize),
		keygen.WithConcurrency(cfg.Concurrency),
	)
	defer svc.Close()

	reqs, err := pendingRequests(ctx, svc, cfg.Keys)
	if err != nil {
		return err
	}

	results, err := svc.Batch(ctx, reqs)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			slog.Warn("key rejected", "label", r.Request.Label, "err", r.Err)
			continue
		}
		slog.Info("key ready", "label", r.Request.Label, "id", r.ID, "n", r.Key.N, "e", r.Key.E)
	}

	return reconcileStore(ctx, store, cfg.Keys, cfg.Prune)
}

// reconcileStore logs what the store holds and, with prune set, deletes
// keys whose label is absent from the config.
func reconcileStore(ctx context.Context, store keyStore, keys []config.KeyRequest, prune bool) error {
	stored, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing stored keys: %w", err)
	}

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k.Label] = struct{}{}
	}

	kept := 0
	for _, key := range stored {
		if _, ok := wanted[key.Label]; ok || !prune {
			kept++
			slog.Debug("stored key", "label", key.Label, "id", key.ID, "created_at", key.CreatedAt)
			continue
		}

		deleted, err := store.Delete(ctx, key.ID)
		if err != nil {
			return fmt.Errorf("pruning key %q: %w", key.Label, err)
		}
		if deleted {
			slog.Info("key pruned", "label", key.Label, "id", key.ID)
		}
	}

	slog.Info("key store reconciled", "stored", kept, "pruned", len(stored)-kept)
	return nil
}

// pendingRequests drops keys whose label is already stored.
func pendingRequests(ctx context.Context, svc *keygen.Service, keys []config.KeyRequest) ([]keygen.Request, error) {
	reqs := make([]keygen.Request, 0, len(keys))
	for _, k := range keys {
		kp, err := svc.LoadByLabel(ctx, k.Label)
		switch {
		case err == nil:
			slog.Info("key already stored", "label", k.Label, "n", kp.N, "e", kp.E)
			continue
		case !errors.Is(err, keygen.ErrKeyNotFound):
			return nil, err
		}
		reqs = append(reqs, keygen.Request{Label: k.Label, P: k.P, Q: k.Q, E: k.E})
	}
	return reqs, nil
}

// keyStore is the repository surface shared by the postgres and sqlite backends.
type keyStore interface {
	keygen.Store
	List(ctx context.Context) ([]model.StoredKey, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// openStore connects to the configured backend and applies migrations.
func openStore(ctx context.Context, cfg config.StoreConfig) (keyStore, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.New(ctx, cfg.DSN(), cfg.ConnectTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := db.RunMigrations(ctx, cfg.Driver, cfg.DSN()); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "driver", cfg.Driver)
		return db.NewPostgresKeyRepository(database.Pool()), database.Close, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		if err := db.Migrate(ctx, sqlDB, cfg.Driver); err != nil {
			sqlDB.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "driver", cfg.Driver)
		return db.NewSQLiteKeyRepository(sqlDB), func() { sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
