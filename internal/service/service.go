package service

import (
	"minera/internal/config"
	"minera/internal/repository"
	"minera/internal/storage"
)

type Service struct {
	Token    TokenService
	Ad       AdService
	Download DownloadService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage) *Service {
	tokenService := NewTokenService(rep.Token, rep.Profile)

	return &Service{
		Token:    tokenService,
		Ad:       NewAdService(rep.Ad, tokenService, cfg),
		Download: NewDownloadService(cfg, storage),
	}
}
