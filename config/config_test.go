package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("OPERATOR_ROLE_IDS", "10,20")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.SchedulerTick)
	assert.Equal(t, 30*time.Second, cfg.GateLookahead)
	assert.Equal(t, time.Minute, cfg.IndefiniteGateSweep)
	assert.Equal(t, 12*time.Hour, cfg.NoticeResetInterval)
	assert.Equal(t, "🎉", cfg.ParticipateEmoji)
	assert.Equal(t, []int64{10, 20}, cfg.OperatorRoleIDs)
	assert.Empty(t, cfg.NATSServers)
}

func TestLoad_RequiresTokenOutsideTests(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")

	_, err := load()
	assert.ErrorContains(t, err, "DISCORD_TOKEN")
}

func TestLoad_RejectsBadDurations(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("SCHEDULER_TICK", "soon")

	_, err := load()
	assert.ErrorContains(t, err, "parse env")
}

func TestLoad_RejectsUnknownExporter(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("OTEL_EXPORTER_TYPE", "zipkin")

	_, err := load()
	assert.ErrorContains(t, err, "OTEL_EXPORTER_TYPE")
}

func TestConfig_Access(t *testing.T) {
	cfg := NewTestConfig()

	assert.True(t, cfg.IsOperator([]int64{1, 999999}))
	assert.False(t, cfg.IsOperator([]int64{1}))
	assert.True(t, cfg.IsOwner(111111))
	assert.False(t, cfg.IsOwner(999999))
}

func TestGet_UsesTestOverride(t *testing.T) {
	override := NewTestConfig()
	override.GuildID = "123"
	SetTestConfig(override)
	defer ResetConfig()

	assert.Same(t, override, Get())
}
