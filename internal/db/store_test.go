package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
	"github.com/kevin-vien/web-mobile-tranning/internal/db"
	"github.com/kevin-vien/web-mobile-tranning/internal/db/dbtest"
	"github.com/kevin-vien/web-mobile-tranning/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := db.Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := db.DSN(config.DatabaseConfig{
		Host: "pg", User: "shop", Password: "pw", Name: "web_mobile",
		Port: "5432", SSLMode: "disable", TimeZone: "UTC",
	})
	assert.Equal(t, "host=pg user=shop password=pw dbname=web_mobile port=5432 sslmode=disable TimeZone=UTC", dsn)
}

func TestBootstrapMarksReady(t *testing.T) {
	store, err := db.Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file::memory:?cache=shared"})
	require.NoError(t, err)
	defer store.Close()

	assert.False(t, store.Ready())
	require.NoError(t, store.Bootstrap(context.Background()))
	assert.True(t, store.Ready())

	assert.True(t, store.DB.Migrator().HasTable(&models.IdempotencyKey{}))
	assert.True(t, store.DB.Migrator().HasTable("order_details"))
}

func TestRunStopsWithContext(t *testing.T) {
	store, err := db.Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file::memory:?cache=shared"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		store.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.False(t, store.Ready())
}

func TestMigrateStaysUnderIndexBudget(t *testing.T) {
	gdb := dbtest.Open(t)

	for _, model := range db.Schema() {
		indexes, err := gdb.Migrator().GetIndexes(model)
		if err != nil {
			continue
		}
		assert.LessOrEqual(t, len(indexes), db.MaxIndexesPerTable)
	}
}
