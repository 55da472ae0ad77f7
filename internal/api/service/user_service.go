package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/repository"
)

const issuer = "tic-tac-toe"

var (
	ErrUsernameTaken      = repository.ErrUsernameTaken
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	GuestLogin(ctx context.Context) (*models.TokenResponse, error)
	// ParseToken returns the player id a token was issued for.
	ParseToken(token string) (string, error)
}

// Claims is the JWT payload; the subject is the player id.
type Claims struct {
	Username string `json:"un,omitempty"`
	Guest    bool   `json:"guest,omitempty"`
	jwt.RegisteredClaims
}

type userService struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
}

// NewUserService creates a UserService signing HS256 tokens with secret.
func NewUserService(userRepo repository.UserRepository, secret string, ttl time.Duration) UserService {
	return &userService{userRepo: userRepo, secret: []byte(secret), ttl: ttl}
}

// Register creates the account and logs it in.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	existingUser, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrUsernameTaken
	}

	user := &models.User{Username: req.Username}
	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, err
	}
	return s.issue(userPlayerID(user.ID), user.Username, false)
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(userPlayerID(user.ID), user.Username, false)
}

// GuestLogin issues a token for a fresh anonymous player.
func (s *userService) GuestLogin(ctx context.Context) (*models.TokenResponse, error) {
	return s.issue("guest-"+uuid.NewString(), "", true)
}

func (s *userService) ParseToken(tokenString string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *userService) issue(playerID, username string, guest bool) (*models.TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		Guest:    guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.TokenResponse{Token: tokenString, PlayerID: playerID}, nil
}

func userPlayerID(id int64) string {
	return "user-" + strconv.FormatInt(id, 10)
}
