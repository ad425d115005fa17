package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, SnapshotNone, cfg.Snapshot.Driver)
	assert.Equal(t, EventsNone, cfg.Events.Driver)
	assert.Equal(t, "transactions", cfg.Events.Topic)
	assert.Equal(t, domain.FormatJSON, cfg.SnapshotFormat())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
grpc:
  addr: ":6000"
http:
  enabled: false
snapshot:
  driver: mysql
  format: proto
  restore_on_start: true
mysql:
  host: db
  user: ledger
  db_name: ledger
  conn_max_lifetime: 5m
events:
  driver: kafka
  brokers: ["k1:9092"]
  buffer_size: 16
`)
	t.Setenv("LEDGER_GRPC_ADDR", ":7000")
	t.Setenv("LEDGER_EVENTS_BROKERS", "k1:9092,k2:9092")
	t.Setenv("LEDGER_MYSQL_PASSWORD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.GRPC.Addr)
	assert.False(t, cfg.HTTP.Enabled)
	assert.Equal(t, SnapshotMySQL, cfg.Snapshot.Driver)
	assert.Equal(t, domain.FormatProto, cfg.SnapshotFormat())
	assert.True(t, cfg.Snapshot.RestoreOnStart)
	assert.Equal(t, "secret", cfg.MySQL.Password)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
	// 沒寫的連線池參數補預設值
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
	assert.Equal(t, 16, cfg.Events.BufferSize)
	// 沒寫的欄位保留預設值
	assert.Equal(t, "transactions", cfg.Events.Topic)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown snapshot driver", "snapshot:\n  driver: s3\n", "unknown snapshot.driver"},
		{"bad format", "snapshot:\n  format: xml\n", "snapshot.format"},
		{"postgres without dsn", "snapshot:\n  driver: postgres\n", "postgres.dsn"},
		{"kafka without brokers", "events:\n  driver: kafka\n", "events.brokers"},
		{"restore without driver", "snapshot:\n  restore_on_start: true\n", "need a snapshot.driver"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"zero buffer", "events:\n  buffer_size: -1\n", "events.buffer_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(writeConfig(t, "grpc: [broken"))
	assert.ErrorContains(t, err, "parse config")
}

func TestLogConfig_Apply(t *testing.T) {
	logger := logrus.New()
	require.NoError(t, LogConfig{Level: "debug", Format: "json"}.Apply(logger))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	assert.Error(t, LogConfig{Level: "nope"}.Apply(logger))
}
