// Package identity implements account registration, authentication, and
// profile management over the graph store.
package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"kinnected/backend/internal/auth"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
	"kinnected/backend/pkg/logger"
)

// maxSearchResults caps the user-search response size
const maxSearchResults = 10

// Repository is the slice of the graph store the identity service needs
type Repository interface {
	CreateAccount(ctx context.Context, acc *graph.Account) error
	GetAccountByID(ctx context.Context, id string) (*graph.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*graph.Account, error)
	SearchAccounts(ctx context.Context, query string, limit int) ([]*graph.AccountSummary, error)
	UpdateAccount(ctx context.Context, id string, update *graph.AccountUpdate) (*graph.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Service handles account lifecycle and sessions
type Service struct {
	repo   Repository
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewService creates an identity service
func NewService(repo Repository, tokens *auth.TokenManager) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger.Named("identity"),
	}
}

// RegisterRequest carries the registration fields
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Register creates an account with hashed credentials and issues a session
// token. The handle check is case-insensitive; a duplicate fails validation.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*graph.Account, string, error) {
	if err := validateRegistration(req); err != nil {
		return nil, "", err
	}

	existing, err := s.repo.GetAccountByUsername(ctx, req.Username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", apperrors.ValidationField("username", "Username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	acc := &graph.Account{
		ID:               uuid.NewString(),
		Username:         strings.TrimSpace(req.Username),
		FullName:         strings.TrimSpace(req.FullName),
		Email:            strings.TrimSpace(req.Email),
		PasswordHash:     hash,
		Privacy:          graph.DefaultPrivacySettings(),
		TreePreferences:  graph.DefaultTreePreferences(),
		Notifications:    graph.DefaultNotificationSettings(),
		RelationSettings: graph.DefaultRelationSettings(),
		AppPreferences:   graph.DefaultAppPreferences(),
	}

	// The unique constraints arbitrate races that slip past the pre-check
	if err := s.repo.CreateAccount(ctx, acc); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Account registered", zap.String("username", acc.Username))
	return acc, token, nil
}

// Login authenticates by handle and password. Unknown handle and wrong
// password return the identical generic error.
func (s *Service) Login(ctx context.Context, username, password string) (*graph.Account, string, error) {
	if username == "" || password == "" {
		return nil, "", apperrors.Validation("Username and password are required")
	}

	acc, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if acc == nil || !auth.CheckPassword(acc.PasswordHash, password) {
		return nil, "", apperrors.Authentication("Invalid username or password")
	}

	token, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return nil, "", err
	}

	return acc, token, nil
}

// GetByID fetches an account by ID, failing with NotFound when absent
func (s *Service) GetByID(ctx context.Context, id string) (*graph.Account, error) {
	acc, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return acc, nil
}

// GetProfile fetches an account by handle, failing with NotFound when absent
func (s *Service) GetProfile(ctx context.Context, username string) (*graph.Account, error) {
	acc, err := s.repo.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return acc, nil
}

// UpdateProfile applies an explicit, typed update to the caller's account
func (s *Service) UpdateProfile(ctx context.Context, userID string, update graph.AccountUpdate) (*graph.Account, error) {
	if update.Empty() {
		return nil, apperrors.Validation("No updates provided")
	}
	if update.Email != nil {
		if ok, msg := auth.ValidateEmail(*update.Email); !ok {
			return nil, apperrors.ValidationField("email", msg)
		}
	}
	if update.FullName != nil {
		if ok, msg := auth.ValidateFullName(*update.FullName); !ok {
			return nil, apperrors.ValidationField("fullName", msg)
		}
	}
	if update.Bio != nil && len(*update.Bio) > 500 {
		return nil, apperrors.ValidationField("bio", "Bio cannot exceed 500 characters")
	}

	acc, err := s.repo.UpdateAccount(ctx, userID, &update)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return acc, nil
}

// Search matches accounts by handle, name, or email substring
func (s *Service) Search(ctx context.Context, query string) ([]*graph.AccountSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.Validation("Search query is required")
	}
	return s.repo.SearchAccounts(ctx, query, maxSearchResults)
}

// Delete removes the caller's account. Relations it owned or targeted are not
// cleaned up here.
func (s *Service) Delete(ctx context.Context, userID string) error {
	acc, err := s.repo.GetAccountByID(ctx, userID)
	if err != nil {
		return err
	}
	if acc == nil {
		return apperrors.NotFound("User not found")
	}
	return s.repo.DeleteAccount(ctx, userID)
}

func validateRegistration(req RegisterRequest) error {
	details := []string{}

	if ok, msg := auth.ValidateUsername(req.Username); !ok {
		details = append(details, msg)
	}
	if ok, msg := auth.ValidateEmail(req.Email); !ok {
		details = append(details, msg)
	}
	if ok, msg := auth.ValidatePassword(req.Password); !ok {
		details = append(details, msg)
	}
	if ok, msg := auth.ValidateFullName(req.FullName); !ok {
		details = append(details, msg)
	}

	if len(details) > 0 {
		return apperrors.Validation("Validation failed", details...)
	}
	return nil
}
