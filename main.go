package main

import (
	"ContentCreator-server/config"
	"ContentCreator-server/logger"
	"ContentCreator-server/models"
	"ContentCreator-server/routers"
	"ContentCreator-server/service"

	"go.uber.org/zap"
)

func main() {
	config.InitConfig()
	logger.Init(config.AppConfig.Server.Mode)
	defer logger.Sync()
	logger.L.Info("Server starting", zap.String("port", config.AppConfig.Server.Port))

	models.InitDB(config.AppConfig.MySQL.DSN)
	logger.L.Info("Database initialized")
	if config.AppConfig.Seed {
		if err := models.Seed(models.GormDB); err != nil {
			logger.L.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	if err := service.InitQueue(); err != nil {
		logger.L.Fatal("Failed to initialize queue", zap.Error(err))
	}
	defer service.CloseQueue()

	processor := service.NewProcessor(models.GormDB, service.NewWorkerGenerator(config.AppConfig.Worker.Addr))
	processor.StartProcessor(5)

	r := routers.InitRouter(models.GormDB, config.AppConfig.Session.Secret)
	if err := r.Run(config.AppConfig.Server.Port); err != nil {
		logger.L.Fatal("Server stopped", zap.Error(err))
	}
}
