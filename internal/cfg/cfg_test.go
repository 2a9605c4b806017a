package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, DriverSqlite, c.Db.Driver)
	assert.Equal(t, "inventory.db", c.Db.SqlitePath)
	assert.Nil(t, c.Db.Postgres)
	assert.Nil(t, c.Kafka)
	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, "8091", c.Grpc.Port)
	assert.False(t, c.Redis.RateLimit.Enabled)
	assert.Equal(t, 100, c.Redis.RateLimit.Limit)
	assert.Equal(t, time.Minute, c.Redis.RateLimit.Window)
	assert.Equal(t, 10, c.Outbox.BatchSize)
	assert.Equal(t, 5*time.Minute, c.Outbox.ProcessingTimeout)
	assert.Equal(t, "inventory-backend", c.Telemetry.ServiceName)
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "inv")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "inventory")
	t.Setenv("POSTGRES_MAX_CONNS", "16")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	require.NotNil(t, c.Db.Postgres)
	assert.Equal(t, "inv", c.Db.Postgres.User)
	assert.Equal(t, int32(16), c.Db.Postgres.MaxConns)
	assert.Equal(t, "file://db/migrations", c.Db.Postgres.MigrationsURL)
}

func TestLoad_PostgresRequiresCredentials(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "")

	_, err := Load(logger.NewNopLogger())
	assert.Error(t, err)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")

	_, err := Load(logger.NewNopLogger())
	assert.ErrorIs(t, err, e.ErrUnknownDBDriver)
}

func TestLoad_Kafka(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC", "")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	require.NotNil(t, c.Kafka)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "inventory.stock-events", c.Kafka.Topic)
	assert.Equal(t, 3, c.Kafka.Partitions)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"http timeout", "HTTP_READ_TIMEOUT", "soon"},
		{"rate limit", "RATE_LIMIT", "0"},
		{"rate limit flag", "RATE_LIMIT_ENABLED", "maybe"},
		{"outbox batch", "OUTBOX_BATCH_SIZE", "-1"},
		{"outbox processing timeout", "OUTBOX_PROCESSING_TIMEOUT", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", "")
			t.Setenv(tt.key, tt.val)

			_, err := Load(logger.NewNopLogger())
			assert.Error(t, err)
		})
	}
}
