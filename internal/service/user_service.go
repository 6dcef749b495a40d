package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for request validation
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns account data without exposing the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"created_at"`
}

// UserService handles account registration and session management.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenPair, *UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*UserResponse, error)
}

type userService struct {
	repo       repository.UserRepository
	operations OperationsService
	jwtSecret  []byte
	logger     zerolog.Logger
}

func NewUserService(repo repository.UserRepository, operations OperationsService, jwtSecret []byte, logger zerolog.Logger) UserService {
	return &userService{
		repo:       repo,
		operations: operations,
		jwtSecret:  jwtSecret,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, badRequest("Username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, badRequest("Email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionUserCreate,
		EntityType: model.EntityUser,
		EntityID:   user.ID.String(),
		UserID:     &user.ID,
		Metadata:   map[string]interface{}{"username": user.Username},
	})

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, &Error{Status: http.StatusUnauthorized, Message: "Invalid email or password"}
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.operations.Record(ctx, OperationInput{
		Action:     model.ActionAuthLogin,
		EntityType: model.EntityUser,
		EntityID:   user.ID.String(),
		UserID:     &user.ID,
	})

	return pair, mapToResponse(user), nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, &Error{Status: http.StatusUnauthorized, Message: "Refresh token expired"}
	}

	user, err := s.repo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "Invalid refresh token"}
	}

	// Rotate: the used token dies with the refresh.
	if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		if err := s.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			s.logger.Warn().Err(err).Msg("failed to delete refresh token on logout")
		}
	}
	return nil
}

func (s *userService) Me(ctx context.Context, userID string) (*UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, badRequest("Invalid user id")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("User not found")
	}
	return mapToResponse(user), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	})
	access, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	err = s.repo.CreateRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(refreshTokenTTL),
	})
	if err != nil {
		return nil, err
	}

	// Opportunistic cleanup of expired tokens; a failure is not the
	// caller's problem.
	if err := s.repo.DeleteExpiredRefreshTokens(ctx, now); err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune expired refresh tokens")
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
