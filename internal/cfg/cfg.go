package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

type Config struct {
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Db        *DBCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg // nil, если публикация событий выключена
	Outbox    *OutboxCfg
	Telemetry *TelemetryCfg
}

type HTTPConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

// DBCfg выбирает хранилище: PostgreSQL для продакшена или файл SQLite для одиночного инстанса.
type DBCfg struct {
	Driver     string
	Postgres   *PGDBCfg
	SqlitePath string
}

type PGDBCfg struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MaxConns      int32
	MigrationsURL string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	RateLimit   *RateLimitCfg
}

// RateLimitCfg задаёт скользящее окно: не больше Limit запросов за Window на клиента.
type RateLimitCfg struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type OutboxCfg struct {
	PollInterval      time.Duration
	BatchSize         int
	MaxBackoff        time.Duration
	// ProcessingTimeout: событие в processing дольше этого срока снова выдаётся воркерам.
	ProcessingTimeout time.Duration
}

type TelemetryCfg struct {
	ServiceName  string
	OTLPEndpoint string // пустой выключает экспорт
	Insecure     bool
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	outbox, err := loadOutboxCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	telemetry, err := loadTelemetryCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Grpc:      loadGRPCConfig(),
		Db:        db,
		Redis:     redis,
		Kafka:     kafka,
		Outbox:    outbox,
		Telemetry: telemetry,
	}, nil
}

func loadDBCfg(log logger.Logger) (*DBCfg, error) {
	const (
		defaultDriver     = DriverSqlite
		defaultSqlitePath = "inventory.db"
	)

	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", defaultDriver))

	switch driver {
	case DriverSqlite:
		return &DBCfg{
			Driver:     driver,
			SqlitePath: getEnvOrDefault("SQLITE_PATH", defaultSqlitePath),
		}, nil
	case DriverPostgres:
		pg, err := loadPGDBCfg(log)
		if err != nil {
			return nil, err
		}

		return &DBCfg{
			Driver:   driver,
			Postgres: pg,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", e.ErrUnknownDBDriver, driver)
	}
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost          = "localhost"
		defaultPort          = "5432"
		defaultSSLMode       = "disable"
		defaultMigrationsURL = "file://db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, e.Wrap("POSTGRES_MAX_CONNS", err)
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:      int32(maxConns),
		MigrationsURL: getEnvOrDefault("MIGRATIONS_URL", defaultMigrationsURL),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr            = "localhost:6379"
		defaultDB              = 0
		defaultMaxRetries      = 3
		defaultDialTimeout     = 5 * time.Second
		defaultReadTimeout     = 3 * time.Second
		defaultWriteTimeout    = 3 * time.Second
		defaultRateLimit       = 100
		defaultRateLimitWindow = time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	enabled, err := parseBoolEnv("RATE_LIMIT_ENABLED", false)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_ENABLED")
		return nil, err
	}

	limit, err := parseIntEnv("RATE_LIMIT", defaultRateLimit)
	if err != nil || limit <= 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid RATE_LIMIT")
		return nil, e.Wrap("RATE_LIMIT", e.ErrIncorrectEnvVariable)
	}

	window, err := parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWindow)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_WINDOW")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		RateLimit: &RateLimitCfg{
			Enabled: enabled,
			Limit:   limit,
			Window:  window,
		},
	}, nil
}

// loadKafkaCfg возвращает nil, если KAFKA_BROKERS не задан.
func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultTopic             = "inventory.stock-events"
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
	)

	brokerStr := strings.TrimSpace(getEnv("KAFKA_BROKERS"))
	if brokerStr == "" {
		return nil, nil
	}

	brokers := splitList(brokerStr)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadOutboxCfg() (*OutboxCfg, error) {
	const (
		defaultPollInterval = 5 * time.Second
		defaultBatchSize    = 10
		defaultMaxBackoff   = 30 * time.Second

		defaultProcessingTimeout = 5 * time.Minute
	)

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		return nil, e.Wrap("OUTBOX_POLL_INTERVAL", err)
	}

	batch, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil || batch <= 0 {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", e.ErrIncorrectEnvVariable)
	}

	maxBackoff, err := parseDurationEnv("OUTBOX_MAX_BACKOFF", defaultMaxBackoff)
	if err != nil {
		return nil, e.Wrap("OUTBOX_MAX_BACKOFF", err)
	}

	timeout, err := parseDurationEnv("OUTBOX_PROCESSING_TIMEOUT", defaultProcessingTimeout)
	if err != nil || timeout <= 0 {
		return nil, e.Wrap("OUTBOX_PROCESSING_TIMEOUT", e.ErrIncorrectEnvVariable)
	}

	return &OutboxCfg{
		PollInterval:      poll,
		BatchSize:         batch,
		MaxBackoff:        maxBackoff,
		ProcessingTimeout: timeout,
	}, nil
}

func loadTelemetryCfg() (*TelemetryCfg, error) {
	const defaultServiceName = "inventory-backend"

	insecure, err := parseBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return nil, e.Wrap("OTEL_EXPORTER_OTLP_INSECURE", err)
	}

	return &TelemetryCfg{
		ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", defaultServiceName),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:     insecure,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	return strconv.ParseBool(v)
}

// splitList разбирает список через запятую, пропуская пустые элементы.
func splitList(v string) []string {
	var res []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}

	return res
}
