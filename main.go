package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/fuchsia74/bedrock-gateway/common/config"
	"github.com/fuchsia74/bedrock-gateway/common/logger"
	"github.com/fuchsia74/bedrock-gateway/controller"
	"github.com/fuchsia74/bedrock-gateway/model"
	"github.com/fuchsia74/bedrock-gateway/relay/adaptor/bedrock"
	"github.com/fuchsia74/bedrock-gateway/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Logger.Info("bedrock gateway starting",
		zap.String("region", config.AWSRegion),
		zap.String("default_model", config.DefaultBedrockModel))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	secretsClient, err := model.NewSecretsClient(ctx)
	if err != nil {
		logger.Logger.Fatal("create secrets manager client", zap.Error(err))
	}
	store := model.NewSecretsManagerStore(secretsClient, config.TokenSecretPrefix, config.TokenCacheTTL)

	bedrockClient, err := bedrock.NewClient(ctx)
	if err != nil {
		logger.Logger.Fatal("create bedrock client", zap.Error(err))
	}

	engine := gin.New()
	router.SetRouter(engine, controller.NewRelay(bedrockClient), store)

	port := config.ServerPort
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: engine,
	}

	go func() {
		logger.Logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(config.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
