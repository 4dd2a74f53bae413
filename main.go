package main

import (
	"context"
	"fmt"
	"io"

	"retail_sales/api"
	"retail_sales/internal/config"
	"retail_sales/internal/database"
	"retail_sales/internal/notify"
	"retail_sales/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	storage, err := newStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise storage", zap.Error(err))
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise event publisher", zap.Error(err))
	}
	defer closePublisher(publisher, logger)

	salesService := sales.NewService(storage, publisher, logger)

	r := gin.Default()
	api.InitRoutes(r, salesService, logger)

	logger.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("storage", cfg.Storage.Driver))
	if err := r.Run(cfg.Addr()); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}

func newStorage(cfg config.Config, logger *zap.Logger) (sales.Storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		return sales.NewLocalStorage(), nil
	}
	db, err := database.Open(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	return sales.NewGormStorage(db, logger), nil
}

func newPublisher(cfg config.Config, logger *zap.Logger) (sales.Publisher, error) {
	if cfg.Redis.Addr == "" {
		return notify.NewLogPublisher(logger), nil
	}
	publisher, err := notify.NewRedisPublisher(context.Background(), cfg.Redis.Addr, cfg.Redis.Channel, logger)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

// closePublisher releases publishers that hold a connection.
func closePublisher(publisher sales.Publisher, logger *zap.Logger) {
	closer, ok := publisher.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close event publisher", zap.Error(err))
	}
}
