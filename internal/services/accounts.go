// Package services implements the account and submission operations on top
// of the repositories and the blob store. Results are plain model records.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/models"
	"github.com/dmitrijs2005/recipekeeper/internal/repositories/accounts"
)

// AccountService registers accounts and checks credentials.
type AccountService struct {
	repo   accounts.Repository
	hasher *cryptox.Hasher
	logger logging.Logger
	now    func() time.Time
}

func NewAccountService(repo accounts.Repository, hasher *cryptox.Hasher, logger logging.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		hasher: hasher,
		logger: logger.With("service", "accounts"),
		now:    time.Now,
	}
}

// CreateAccount registers username with a digest of password. It fails with
// common.ErrorUsernameTaken when the username exists.
func (s *AccountService) CreateAccount(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acc := &models.Account{Username: username, PasswordHash: hash, CreatedAt: s.now().UTC()}
	if err := s.repo.Create(ctx, acc); err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return common.ErrorUsernameTaken
		}
		s.logger.Error(ctx, "account create failed", "username", username, "error", err)
		return fmt.Errorf("create account: %w", err)
	}

	s.logger.Info(ctx, "account created", "username", username)
	return nil
}

// VerifyCredentials reports whether username exists and password matches its
// stored digest. Unknown users cost the same as a wrong password. The error
// is non-nil only when the store cannot be read.
func (s *AccountService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.Authenticate(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Authenticate returns the account for valid credentials and
// common.ErrorInvalidCredentials otherwise, without saying which part was
// wrong.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	acc, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	ok, err := s.hasher.Verify(acc.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unreadable", "username", username, "error", err)
		return nil, common.ErrorInvalidCredentials
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}
	return acc, nil
}
