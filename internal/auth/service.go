package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/models"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrBanned         = errors.New("account is banned")
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	VerifyEmail(ctx context.Context, token string) (models.User, error)
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Service struct {
	users     UserStore
	tokens    *Tokens
	validate  *validator.Validate
	publicURL string
	logger    *slog.Logger
}

func NewService(users UserStore, tokens *Tokens, publicURL string, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		validate:  validator.New(),
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Register creates an unverified user and logs the verification link; mail
// delivery is outside this service.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.User{}, err
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    hashed,
		Role:        models.RoleUser,
		VerifyToken: uuid.NewString(),
	})
	if err != nil {
		return models.User{}, err
	}

	s.logger.InfoContext(ctx, "verification link issued",
		slog.String("userId", user.ID.Hex()),
		slog.String("link", s.publicURL+"/api/auth/verify-email?token="+user.VerifyToken))
	return user, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	return s.users.VerifyEmail(ctx, token)
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return LoginResult{}, ErrBadCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !CheckPassword(user.Password, password) {
		return LoginResult{}, ErrBadCredentials
	}
	if user.Banned {
		return LoginResult{}, ErrBanned
	}

	token, err := s.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}
