package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	cfg "github.com/maheshrc27/agrimart/configs"
	"github.com/maheshrc27/agrimart/internal/models"
	"github.com/maheshrc27/agrimart/internal/repository"
	"github.com/maheshrc27/agrimart/internal/transfer"
	"github.com/maheshrc27/agrimart/pkg/utils"
)

const tokenDuration = 72 * time.Hour

type AuthService interface {
	Register(ctx context.Context, reg *transfer.Registration) (int64, error)
	Login(ctx context.Context, login *transfer.Login) (string, error)
}

type authService struct {
	cfg cfg.Config
	ur  repository.UserRepository
}

func NewAuthService(cfg cfg.Config, ur repository.UserRepository) AuthService {
	return &authService{cfg: cfg, ur: ur}
}

func (s *authService) Register(ctx context.Context, reg *transfer.Registration) (int64, error) {
	if reg == nil {
		return 0, errors.New("registration data is nil")
	}
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return 0, errors.New("invalid email address")
	}
	if len(reg.Password) < 8 {
		return 0, errors.New("password must be at least 8 characters")
	}

	existing, err := s.ur.GetByEmail(ctx, reg.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		err = errors.New("email already registered")
		slog.Info(err.Error())
		return 0, err
	}

	hash, err := utils.HashPassword(reg.Password)
	if err != nil {
		return 0, err
	}

	user := models.User{
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: hash,
	}

	id, err := s.ur.Create(ctx, &user)
	if err != nil {
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	return id, nil
}

func (s *authService) Login(ctx context.Context, login *transfer.Login) (string, error) {
	if login == nil {
		return "", errors.New("login data is nil")
	}

	user, err := s.ur.GetByEmail(ctx, login.Email)
	if err != nil {
		return "", err
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, login.Password) {
		err = errors.New("invalid email or password")
		slog.Info(err.Error())
		return "", err
	}

	token, err := utils.GenerateToken(s.cfg.SecretKey, fmt.Sprintf("%d", user.ID), tokenDuration)
	if err != nil {
		return "", err
	}

	return token, nil
}
