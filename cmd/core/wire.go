package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	async_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/async"
	file_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/file"
	kafka_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/kafka"
	mysql_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/mysql"
	postgres_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/postgres"
	redis_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/redis"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/internal/config"
	"github.com/JoeShih716/go-ledger-core/pkg/mysql"
)

func noop() {}

func newRedisClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// newSnapshotStore 依 snapshot.driver 建立快照儲存，none 時回傳 nil
func newSnapshotStore(ctx context.Context, cfg config.Config) (usecase.SnapshotStore, func(), error) {
	switch cfg.Snapshot.Driver {
	case config.SnapshotFile:
		store, err := file_adapter.NewSnapshotStore(cfg.Snapshot.Dir)
		return store, noop, err

	case config.SnapshotMySQL:
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			return nil, noop, err
		}
		store := mysql_adapter.NewSnapshotStore(client)
		if err := store.Migrate(ctx); err != nil {
			client.Close()
			return nil, noop, err
		}
		return store, func() { client.Close() }, nil

	case config.SnapshotPostgres:
		db, err := postgres_adapter.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, noop, err
		}
		store := postgres_adapter.NewSnapshotStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return store, func() { db.Close() }, nil

	case config.SnapshotRedis:
		client := newRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return redis_adapter.NewSnapshotStore(client), func() { client.Close() }, nil

	default:
		return nil, noop, nil
	}
}

// newDispatcher 依 events.driver 建立事件 sink 並包上 Dispatcher，none 時回傳 nil
func newDispatcher(cfg config.Config, log *logrus.Logger) (*async_adapter.Dispatcher, func(), error) {
	var (
		sink    usecase.EventPublisher
		closeFn = noop
	)
	switch cfg.Events.Driver {
	case config.EventsLog:
		sink = async_adapter.NewLogPublisher(log)

	case config.EventsFile:
		eventLog, err := file_adapter.NewEventLog(cfg.Events.FilePath)
		if err != nil {
			return nil, noop, err
		}
		sink, closeFn = eventLog, func() { eventLog.Close() }

	case config.EventsKafka:
		pub := kafka_adapter.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		sink, closeFn = pub, func() { pub.Close() }

	case config.EventsRedis:
		client := newRedisClient(cfg.Redis)
		sink = redis_adapter.NewStreamPublisher(client, cfg.Events.Stream, cfg.Events.StreamMaxLen)
		closeFn = func() { client.Close() }

	default:
		return nil, noop, nil
	}

	d := async_adapter.NewDispatcher(sink,
		async_adapter.WithBufferSize(cfg.Events.BufferSize),
		async_adapter.WithPublishTimeout(cfg.Events.PublishTimeout),
	)
	return d, closeFn, nil
}
