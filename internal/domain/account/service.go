package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"media-catalog-go/pkg/logger"
)

type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates an account, consuming one invite token. Token check and
// account insert share a single writer transaction, and the arbiter allows
// only one such transaction in flight, so two concurrent registrations can
// never both claim the same token.
func (s *Service) Register(ctx context.Context, username, password string, roles []string, inviteToken string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}

	err := s.repo.Write(ctx, func(r Repository) error {
		unclaimed, err := r.IsInviteUnclaimed(ctx, inviteToken)
		if err != nil {
			return err
		}
		if !unclaimed {
			return ErrInvalidInviteToken
		}

		if _, err := r.Get(ctx, username); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}

		return r.Insert(ctx, &Account{
			Username:      username,
			Password:      Hash(username, password),
			Roles:         roles,
			Prefs:         DefaultSettings(),
			ClaimedInvite: inviteToken,
		})
	})
	if err != nil {
		return "", err
	}

	s.log.Info("account: registered", "username", username)
	return username, nil
}

// Authenticate returns the account when the credentials check out and
// ErrUnauthorized otherwise, without distinguishing an unknown username
// from a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	acct, err := s.repo.Get(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !Verify(acct.Username, acct.Password, password) {
		return nil, ErrUnauthorized
	}
	return acct, nil
}

func (s *Service) Get(ctx context.Context, username string) (*Account, error) {
	return s.repo.Get(ctx, username)
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

// SetPassword replaces the stored digest for an authenticated reset.
func (s *Service) SetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("password is required")
	}
	return s.repo.Write(ctx, func(r Repository) error {
		affected, err := r.UpdatePassword(ctx, username, Hash(username, newPassword))
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrAccountNotFound
		}
		return nil
	})
}

// Rename changes the username. The digest is salted with the username, so
// the caller must supply the current password and the digest is recomputed
// under the new identity in the same transaction.
func (s *Service) Rename(ctx context.Context, oldUsername, newUsername, currentPassword string) error {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return fmt.Errorf("username is required")
	}

	return s.repo.Write(ctx, func(r Repository) error {
		acct, err := r.Get(ctx, oldUsername)
		if err != nil {
			return err
		}
		if !Verify(acct.Username, acct.Password, currentPassword) {
			return ErrUnauthorized
		}
		if _, err := r.Get(ctx, newUsername); err == nil {
			return ErrUsernameTaken
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}

		affected, err := r.UpdateUsername(ctx, oldUsername, newUsername, Hash(newUsername, currentPassword))
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func (s *Service) SetPicture(ctx context.Context, username string, assetID int64) error {
	return s.repo.Write(ctx, func(r Repository) error {
		affected, err := r.UpdatePicture(ctx, username, assetID)
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func (s *Service) UpdatePrefs(ctx context.Context, username string, prefs Settings) error {
	return s.repo.Write(ctx, func(r Repository) error {
		affected, err := r.UpdatePrefs(ctx, username, prefs)
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func (s *Service) Delete(ctx context.Context, username string) error {
	return s.repo.Write(ctx, func(r Repository) error {
		affected, err := r.Delete(ctx, username)
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrAccountNotFound
		}
		return nil
	})
}

// IssueInvite mints a new single-use token and records it durably.
func (s *Service) IssueInvite(ctx context.Context) (string, error) {
	token := uuid.NewString()
	err := s.repo.Write(ctx, func(r Repository) error {
		return r.InsertInvite(ctx, &Invite{ID: token, DateAdded: time.Now().UTC()})
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// RevokeInvite deletes the token if it is still unclaimed and returns how
// many tokens were removed (0 when claimed or absent).
func (s *Service) RevokeInvite(ctx context.Context, tokenID string) (int64, error) {
	var count int64
	err := s.repo.Write(ctx, func(r Repository) error {
		n, err := r.DeleteUnclaimedInvite(ctx, tokenID)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) ListInvites(ctx context.Context) ([]Invite, error) {
	return s.repo.ListInvites(ctx)
}
