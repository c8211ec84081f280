package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"minera/internal/models"
	"minera/internal/repository"
)

// Токен расширения - непрозрачная строка не короче 30 символов.
const minTokenLength = 30

var (
	ErrTokenFormat  = errors.New("неверный формат токена - слишком короткий")
	ErrTokenInvalid = errors.New("токен недействителен или истек")
	ErrUserNotFound = errors.New("пользователь не найден")
)

type TokenService interface {
	ValidateToken(ctx context.Context, token string) (*models.Profile, error)
	GetOrCreateToken(ctx context.Context, userID string) (string, error)
	RegenerateToken(ctx context.Context, userID string) (string, error)
}

type tokenService struct {
	tokenRepo   repository.TokenRepository
	profileRepo repository.ProfileRepository
}

func NewTokenService(tokenRepo repository.TokenRepository, profileRepo repository.ProfileRepository) TokenService {
	return &tokenService{
		tokenRepo:   tokenRepo,
		profileRepo: profileRepo,
	}
}

// ValidateToken проверяет токен расширения и возвращает профиль владельца.
// Без побочных эффектов.
func (s *tokenService) ValidateToken(ctx context.Context, token string) (*models.Profile, error) {
	token = strings.TrimSpace(token)

	if len(token) < minTokenLength {
		return nil, ErrTokenFormat
	}

	userToken, err := s.tokenRepo.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("ошибка при проверке токена: %w", err)
	}

	profile, err := s.profileRepo.GetByID(ctx, userToken.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка при получении профиля: %w", err)
	}

	return profile, nil
}

func (s *tokenService) GetOrCreateToken(ctx context.Context, userID string) (string, error) {
	existing, err := s.tokenRepo.GetActiveByUserID(ctx, userID)
	if err == nil {
		return existing.Token, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("ошибка при поиске токена: %w", err)
	}

	return s.issueToken(ctx, userID)
}

// RegenerateToken деактивирует текущий токен и выдаёт новый.
// Старый токен сразу перестаёт проходить ValidateToken.
func (s *tokenService) RegenerateToken(ctx context.Context, userID string) (string, error) {
	err := s.tokenRepo.DeactivateByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("ошибка при деактивации токена: %w", err)
	}

	return s.issueToken(ctx, userID)
}

func (s *tokenService) issueToken(ctx context.Context, userID string) (string, error) {
	value, err := generateTokenValue()
	if err != nil {
		return "", fmt.Errorf("ошибка генерации токена: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  value,
	}

	err = s.tokenRepo.Create(ctx, userToken)
	if err != nil {
		return "", fmt.Errorf("ошибка при сохранении токена: %w", err)
	}

	return value, nil
}

func generateTokenValue() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return "mnr_" + hex.EncodeToString(buf), nil
}
