package storage

import (
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func newTestSQLiteTier(t *testing.T, maxValueBytes int) *SQLiteTier {
	t.Helper()

	tier, err := OpenSQLiteTier(filepath.Join(t.TempDir(), "test.db"), maxValueBytes)
	if err != nil {
		t.Fatalf("failed to open sqlite tier: %v", err)
	}
	t.Cleanup(func() { tier.Close() })

	return tier
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
