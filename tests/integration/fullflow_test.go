package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/iho/pocketbank/internal/adapter/http"
	"github.com/iho/pocketbank/internal/domain"
	"github.com/iho/pocketbank/internal/storage"
	"github.com/iho/pocketbank/internal/store"
)

type stack struct {
	store   *store.Store
	backend *storage.Tiered
	sqlite  *storage.SQLiteTier
	redis   *redis.Client
	router  http.Handler
}

func newStack(t *testing.T) *stack {
	t.Helper()

	sqlite, err := storage.OpenSQLiteTier(filepath.Join(t.TempDir(), "state.db"), 0)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	backend := storage.NewTiered(storage.Config{
		SQLite:     sqlite,
		Redis:      storage.NewRedisTier(redisClient, zerolog.Nop()),
		QuotaBytes: 50 * 1024 * 1024,
		Logger:     zerolog.Nop(),
	})

	st := store.New(store.Config{
		Backend:         backend,
		Logger:          zerolog.Nop(),
		NotifyDebounce:  5 * time.Millisecond,
		PersistDebounce: 5 * time.Millisecond,
	})
	t.Cleanup(st.Flush)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		StateHandler: adaptershttp.NewStateHandler(st, backend),
	})

	return &stack{store: st, backend: backend, sqlite: sqlite, redis: redisClient, router: router}
}

func TestFullFlowTransactionsPersistAcrossRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "state.db")

	open := func() (*store.Store, *storage.SQLiteTier) {
		sqlite, err := storage.OpenSQLiteTier(path, 0)
		if err != nil {
			t.Fatalf("failed to open sqlite: %v", err)
		}
		backend := storage.NewTiered(storage.Config{SQLite: sqlite, Logger: zerolog.Nop()})
		return store.New(store.Config{Backend: backend, Logger: zerolog.Nop()}), sqlite
	}

	st, sqlite := open()
	if err := st.SetBalance(decimal.RequireFromString("100000.00")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	id, err := st.CreateTransaction(store.TransactionDraft{
		Type:         "Bank Transfer",
		Amount:       decimal.RequireFromString("50000.00"),
		Fee:          decimal.RequireFromString("30.00"),
		Direction:    domain.DirectionDebit,
		Counterparty: "Chinedu Eze",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	st.Flush()
	sqlite.Close()

	st2, sqlite2 := open()
	defer sqlite2.Close()
	defer st2.Flush()

	if got := st2.Balance().StringFixed(2); got != "49970.00" {
		t.Fatalf("balance after restart = %s, want 49970.00", got)
	}
	if got := st2.Transactions()[0].ID; got != id {
		t.Fatalf("newest transaction = %s, want %s", got, id)
	}
}

func TestFullFlowStorageFallbackToRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)
	ctx := context.Background()

	// Kill the synchronous tier; asynchronous saves must still land.
	s.sqlite.Close()

	s.backend.Save(ctx, "probe", []byte(`{"alive":true}`))

	got, ok := s.backend.Load(ctx, "probe")
	if !ok {
		t.Fatal("expected load to succeed via the async tier")
	}
	if string(got) != `{"alive":true}` {
		t.Fatalf("loaded %q", got)
	}

	// The value reached redis, not just the memory cache.
	keys, err := s.redis.Keys(ctx, "pocketbank:*").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatal("expected the saved value in redis")
	}
}

func TestFullFlowHTTPSurfaceOverLiveStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)

	if _, err := s.store.CreateTransaction(store.TransactionDraft{
		Type:         "Email Transfer",
		Amount:       decimal.RequireFromString("75.00"),
		Direction:    domain.DirectionDebit,
		Counterparty: "Funmi Ade",
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	s.store.Flush()

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", rec.Code)
	}

	var env domain.SnapshotEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if env.Data.Transactions[0].Counterparty != "Funmi Ade" {
		t.Fatalf("snapshot missing latest transaction")
	}

	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/storage/usage", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("usage status = %d", rec.Code)
	}

	var usage storage.Usage
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usage.UsedBytes <= 0 || usage.QuotaBytes != 50*1024*1024 {
		t.Fatalf("usage = %+v", usage)
	}
}
