package service

import (
	"context"
	"errors"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/internal/modules/user/dto"
	"github.com/Angel-Eco/CuidadoPRO/internal/modules/user/repository"
	"github.com/Angel-Eco/CuidadoPRO/pkg/apperror"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Usuario o contraseña incorrectos"

type AuthService interface {
	Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	repo   repository.UserRepository
	tokens *TokenManager
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo repository.UserRepository, tokens *TokenManager, log zerolog.Logger) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		log:    log.With().Str("module", "auth").Logger(),
		now:    time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperror.Internal("Error durante la autenticación", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Error().Err(err).Str("username", user.Username).Msg("stored password hash is unusable")
		}
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperror.BadRequest("Usuario inactivo")
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperror.Internal("Error durante la autenticación", err)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	s.log.Info().Str("username", user.Username).Msg("user logged in")

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
		User:        user,
	}, nil
}
