package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDSN(t *testing.T) {
	cfg := Config{
		Host:     "db",
		Port:     "5433",
		User:     "game",
		Password: "night",
		DBName:   "tabletop",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db port=5433 user=game password=night dbname=tabletop sslmode=require",
		cfg.DSN())
}

func TestNewPoolStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPool(ctx, Config{
		Host: "127.0.0.1", Port: "1", User: "x", Password: "x", DBName: "x", SSLMode: "disable",
	}, zap.NewNop())
	require.Error(t, err)
}

func TestNewPoolRejectsBadConfig(t *testing.T) {
	_, err := NewPool(context.Background(), Config{Host: "localhost", Port: "not-a-port", SSLMode: "disable"}, zap.NewNop())
	require.Error(t, err)
}
