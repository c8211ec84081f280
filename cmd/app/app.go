package app

import (
	"log"
	"minera/internal/config"
	"minera/internal/database"
	"minera/internal/repository"
	"minera/internal/service"
	"minera/internal/storage"
)

func App(cfg *config.Config) (*database.DB, *repository.Repository, *service.Service) {
	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO (только при включённом архиве медиа)
	var mediaStorage storage.Storage
	if cfg.MediaArchiveEnabled {
		minioClient, err := storage.NewMinIOClient(cfg)
		if err != nil {
			log.Fatalf("Не удалось инициализировать MinIO: %v", err)
		}
		mediaStorage = minioClient
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, mediaStorage)

	return db, repo, services
}
