package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vod-egress/internal/dispatch"
	"vod-egress/internal/handlers"
	"vod-egress/internal/logging"
	"vod-egress/internal/middleware"
	"vod-egress/internal/relay"
	"vod-egress/internal/startup"
	"vod-egress/internal/storage"
)

func main() {
	startTime := time.Now()

	cfg, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	objClient, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		startup.LogFatal("Failed to initialize object store client: %v", err)
	}
	objProvider := storage.NewObjectProvider(objClient)

	// Signed URLs always come from the object store; the proxy path only
	// changes where the router reads blobs from.
	var provider storage.Provider = objProvider
	if cfg.UseStorageProxy {
		provider = storage.NewProxyProvider(cfg.NodeAddress, cfg.StoragePort)
		logging.Info("Using storage proxy at %s:%d", cfg.NodeAddress, cfg.StoragePort)
	}

	scheduler, err := dispatch.NewKubeScheduler(cfg.Namespace)
	if err != nil {
		startup.LogFatal("Failed to initialize cluster scheduler: %v", err)
	}

	pipes := relay.New()
	dispatcher := dispatch.New(scheduler, objProvider, pipes, cfg)
	h := handlers.New(provider, dispatcher, pipes, cfg)

	router := h.Router()
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	handler := middleware.CORS(
		middleware.Logger(middleware.DefaultLoggingConfig())(
			middleware.Metrics(middleware.DefaultMetricsConfig())(router)))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
		// Segment responses stream for as long as a job encodes, so only
		// reads are bounded.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv)

	startup.LogServerStarted(cfg.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("Received %s, shutting down", sig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error: %v", err)
	}
}
