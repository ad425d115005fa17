package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-ledger-core/internal/app/core/domain"
	"github.com/JoeShih716/go-ledger-core/pkg/mysql"
)

// EnvPrefix 環境變數前綴，例如 LEDGER_GRPC_ADDR
const EnvPrefix = "LEDGER"

// 快照儲存方式
const (
	SnapshotNone     = "none"
	SnapshotFile     = "file"
	SnapshotMySQL    = "mysql"
	SnapshotPostgres = "postgres"
	SnapshotRedis    = "redis"
)

// 事件發布方式
const (
	EventsNone  = "none"
	EventsLog   = "log"
	EventsFile  = "file"
	EventsKafka = "kafka"
	EventsRedis = "redis"
)

type Config struct {
	GRPC     GRPCConfig     `yaml:"grpc" envconfig:"GRPC"`
	HTTP     HTTPConfig     `yaml:"http" envconfig:"HTTP"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
	Snapshot SnapshotConfig `yaml:"snapshot" envconfig:"SNAPSHOT"`
	MySQL    mysql.Config   `yaml:"mysql" envconfig:"MYSQL"`
	Postgres PostgresConfig `yaml:"postgres" envconfig:"POSTGRES"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	Events   EventsConfig   `yaml:"events" envconfig:"EVENTS"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

type HTTPConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	Addr    string `yaml:"addr" envconfig:"ADDR"`
	// AllowedOrigins CORS 允許的來源，預設 "*"
	AllowedOrigins []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

type SnapshotConfig struct {
	Driver         string `yaml:"driver" envconfig:"DRIVER"`
	Dir            string `yaml:"dir" envconfig:"DIR"`
	Key            string `yaml:"key" envconfig:"KEY"`
	Format         string `yaml:"format" envconfig:"FORMAT"`
	RestoreOnStart bool   `yaml:"restore_on_start" envconfig:"RESTORE_ON_START"`
	SaveOnShutdown bool   `yaml:"save_on_shutdown" envconfig:"SAVE_ON_SHUTDOWN"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" envconfig:"DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"ADDR"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
}

type EventsConfig struct {
	Driver         string        `yaml:"driver" envconfig:"DRIVER"`
	Topic          string        `yaml:"topic" envconfig:"TOPIC"`
	Brokers        []string      `yaml:"brokers" envconfig:"BROKERS"`
	Stream         string        `yaml:"stream" envconfig:"STREAM"`
	StreamMaxLen   int64         `yaml:"stream_max_len" envconfig:"STREAM_MAX_LEN"`
	FilePath       string        `yaml:"file_path" envconfig:"FILE_PATH"`
	BufferSize     int           `yaml:"buffer_size" envconfig:"BUFFER_SIZE"`
	PublishTimeout time.Duration `yaml:"publish_timeout" envconfig:"PUBLISH_TIMEOUT"`
}

// Default 沒有任何設定時的值：純記憶體帳本，不存快照也不發布事件
func Default() Config {
	return Config{
		GRPC: GRPCConfig{Addr: ":50051"},
		HTTP: HTTPConfig{
			Enabled:        true,
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Snapshot: SnapshotConfig{
			Driver: SnapshotNone,
			Dir:    "data",
			Key:    "ledger",
			Format: "json",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Events: EventsConfig{
			Driver:         EventsNone,
			Topic:          "transactions",
			Stream:         "ledger:transactions",
			FilePath:       "events.jsonl",
			BufferSize:     1024,
			PublishTimeout: 5 * time.Second,
		},
	}
}

// Load 依序套用: 預設值 -> .env -> YAML 檔 -> LEDGER_* 環境變數，最後驗證
//
// 參數:
//
//	path: YAML 設定檔路徑，空字串或檔案不存在時略過
//
// 回傳:
//
//	Config: 最終設定
//	error: 檔案格式錯誤或驗證失敗
func Load(path string) (Config, error) {
	cfg := Default()

	// .env 只填入尚未設定的環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Snapshot.Driver = strings.ToLower(strings.TrimSpace(c.Snapshot.Driver))
	c.Events.Driver = strings.ToLower(strings.TrimSpace(c.Events.Driver))
	if c.Snapshot.Driver == "" {
		c.Snapshot.Driver = SnapshotNone
	}
	if c.Events.Driver == "" {
		c.Events.Driver = EventsNone
	}
	if c.Snapshot.Driver == SnapshotMySQL {
		c.MySQL.SetDefaults()
	}
}

// Validate 檢查設定組合是否可用
func (c *Config) Validate() error {
	var errs []error
	if c.GRPC.Addr == "" {
		errs = append(errs, errors.New("grpc.addr is required"))
	}
	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required when http is enabled"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	switch c.Snapshot.Driver {
	case SnapshotNone, SnapshotFile, SnapshotRedis:
	case SnapshotMySQL:
		if c.MySQL.Host == "" || c.MySQL.DBName == "" {
			errs = append(errs, errors.New("mysql.host and mysql.db_name are required for the mysql snapshot driver"))
		}
	case SnapshotPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required for the postgres snapshot driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown snapshot.driver %q", c.Snapshot.Driver))
	}
	if _, err := domain.ParseSnapshotFormat(c.Snapshot.Format); err != nil {
		errs = append(errs, fmt.Errorf("snapshot.format: %w", err))
	}
	if c.Snapshot.Driver == SnapshotNone && (c.Snapshot.RestoreOnStart || c.Snapshot.SaveOnShutdown) {
		errs = append(errs, errors.New("snapshot.restore_on_start/save_on_shutdown need a snapshot.driver"))
	}

	switch c.Events.Driver {
	case EventsNone, EventsLog, EventsRedis:
	case EventsFile:
		if c.Events.FilePath == "" {
			errs = append(errs, errors.New("events.file_path is required for the file events driver"))
		}
	case EventsKafka:
		if len(c.Events.Brokers) == 0 {
			errs = append(errs, errors.New("events.brokers is required for the kafka events driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}
	if c.Events.BufferSize <= 0 {
		errs = append(errs, errors.New("events.buffer_size must be positive"))
	}
	if (c.Snapshot.Driver == SnapshotRedis || c.Events.Driver == EventsRedis) && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errors.Join(errs...)
}

// SnapshotFormat 已驗證過的快照格式
func (c *Config) SnapshotFormat() domain.SnapshotFormat {
	f, _ := domain.ParseSnapshotFormat(c.Snapshot.Format)
	return f
}

// Apply 設定 logrus 的等級與格式
func (c LogConfig) Apply(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
