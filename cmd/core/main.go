package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/in/http"
	memory_adapter "github.com/JoeShih716/go-ledger-core/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-ledger-core/internal/app/core/usecase"
	"github.com/JoeShih716/go-ledger-core/internal/config"
)

// defaultConfigPath 可用 LEDGER_CONFIG 覆寫
const defaultConfigPath = "config/config.yaml"

func main() {
	log := logrus.StandardLogger()

	// 1. 載入設定
	path := os.Getenv("LEDGER_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Log.Apply(log); err != nil {
		log.Fatalf("Failed to apply log config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. 快照儲存 (Driven Adapter)
	store, closeStore, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to init snapshot store: %v", err)
	}
	defer closeStore()

	// 3. 事件發布：實際 sink 外面包一層非阻塞的 Dispatcher
	dispatcher, closePublisher, err := newDispatcher(cfg, log)
	if err != nil {
		log.Fatalf("Failed to init event publisher: %v", err)
	}
	defer closePublisher()

	// 4. 初始化 UseCase
	opts := []usecase.CoreOption{}
	if store != nil {
		opts = append(opts, usecase.WithSnapshotStore(store, cfg.SnapshotFormat()))
	}
	if dispatcher != nil {
		opts = append(opts, usecase.WithPublisher(dispatcher))
		dispatcher.Start(ctx)
	}
	coreUseCase := usecase.NewCoreUseCase(memory_adapter.NewMutexLedger(nil), opts...)

	if cfg.Snapshot.RestoreOnStart {
		restoreSnapshot(ctx, coreUseCase, cfg.Snapshot.Key, log)
	}

	// 5. gRPC Server (Driving Adapter)
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(grpc_adapter.LoggingInterceptor(log)))
	grpc_adapter.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(coreUseCase))

	go func() {
		log.Infof("Starting gRPC server on %s", cfg.GRPC.Addr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("failed to serve grpc: %v", err)
		}
	}()

	// 6. HTTP Server
	var httpServer *http.Server
	if cfg.HTTP.Enabled {
		httpServer = &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: http_adapter.NewRouter(coreUseCase, http_adapter.RouterOptions{
				AllowedOrigins: cfg.HTTP.AllowedOrigins,
				Logger:         log,
			}),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}
		go func() {
			log.Infof("Starting HTTP server on %s", cfg.HTTP.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("failed to serve http: %v", err)
			}
		}()
	}

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	if httpServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
		cancelShutdown()
	}
	s.GracefulStop()

	// 送完 buffer 中的事件
	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
		if n := dispatcher.Dropped(); n > 0 {
			log.Warnf("%d events were dropped", n)
		}
	}

	if cfg.Snapshot.SaveOnShutdown {
		saveCtx, cancelSave := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := coreUseCase.Save(saveCtx, cfg.Snapshot.Key)
		cancelSave()
		if err != nil {
			log.WithError(err).Error("Failed to save snapshot on shutdown")
		} else {
			log.Infof("Saved snapshot %q (%d bytes)", cfg.Snapshot.Key, n)
		}
	}
	log.Info("Server exited")
}

// restoreSnapshot 沒有快照時從空帳本開始，快照損壞則直接結束
func restoreSnapshot(ctx context.Context, core *usecase.CoreUseCase, key string, log *logrus.Logger) {
	err := core.Load(ctx, key)
	switch {
	case errors.Is(err, usecase.ErrSnapshotNotFound):
		log.Infof("No snapshot %q found, starting with an empty ledger", key)
	case err != nil:
		log.Fatalf("Failed to restore snapshot %q: %v", key, err)
	default:
		r := core.Report(ctx)
		log.WithField("total_assets", r.TotalAssets).Infof("Restored snapshot %q", key)
	}
}
