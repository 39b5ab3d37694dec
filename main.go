package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"calorieburn/calories"
	"calorieburn/config"
	qhttp "calorieburn/http"
	"calorieburn/logger"
	"calorieburn/ml"
	"calorieburn/monitoring"
)

func main() {
	// 1. Load config
	configPath, err := config.Find("config.yaml")
	if err != nil {
		log.Fatalf("Failed to find config: %v", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	// 2. Load artifacts; the service cannot run without both
	scaler, err := ml.LoadScaler(cfg.Artifacts.ScalerType, cfg.Artifacts.ScalerPath)
	if err != nil {
		logger.Fatal("failed to load scaler", zap.String("path", cfg.Artifacts.ScalerPath), zap.Error(err))
	}
	model, err := ml.LoadModel(cfg.Artifacts.ModelType, cfg.Artifacts.ModelPath)
	if err != nil {
		logger.Fatal("failed to load model", zap.String("path", cfg.Artifacts.ModelPath), zap.Error(err))
	}
	logger.Info("artifacts loaded",
		zap.String("scaler_type", cfg.Artifacts.ScalerType),
		zap.String("model_type", cfg.Artifacts.ModelType),
		zap.Strings("feature_order", ml.FeatureNames()),
	)

	predictor, err := calories.NewHandler(scaler, model, calories.Options{
		MemoSize: cfg.Cache.Size,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to create predictor", zap.Error(err))
	}

	if cfg.Artifacts.Watch {
		watcher, err := monitoring.WatchArtifacts(map[string]string{
			"scaler": cfg.Artifacts.ScalerPath,
			"model":  cfg.Artifacts.ModelPath,
		}, logger, metrics)
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, predictor, registry, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
