package testutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ErrSimulated подставляется фейковыми хранилищами, чтобы проверить ветки ошибок сервиса.
var ErrSimulated = errors.New("simulated store failure")

// ContextWithTimeout возвращает context с timeout; cancel вызывается в t.Cleanup.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// ContextWithCancel возвращает отменяемый context; тест может отменить его раньше Cleanup.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}
