package account

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"media-catalog-go/internal/db"
	accountdomain "media-catalog-go/internal/domain/account"
)

type PostgresRepository struct {
	arbiter *db.Arbiter
	tx      *gorm.DB
}

func NewPostgres(arbiter *db.Arbiter) *PostgresRepository {
	return &PostgresRepository{arbiter: arbiter}
}

func (r *PostgresRepository) conn(ctx context.Context) *gorm.DB {
	if r.tx != nil {
		return r.tx
	}
	return r.arbiter.Reader(ctx)
}

func (r *PostgresRepository) Write(ctx context.Context, fn func(accountdomain.Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.arbiter.Write(ctx, func(tx *gorm.DB) error {
		return fn(&PostgresRepository{arbiter: r.arbiter, tx: tx})
	})
}

func (r *PostgresRepository) Get(ctx context.Context, username string) (*accountdomain.Account, error) {
	var acct accountdomain.Account
	err := r.conn(ctx).Where("username = ?", username).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accountdomain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]accountdomain.Account, error) {
	var accts []accountdomain.Account
	if err := r.conn(ctx).Order("username asc").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, acct *accountdomain.Account) error {
	return r.conn(ctx).Create(acct).Error
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, username, digest string) (int64, error) {
	res := r.conn(ctx).Model(&accountdomain.Account{}).
		Where("username = ?", username).
		Update("password", digest)
	return res.RowsAffected, res.Error
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, oldUsername, newUsername, digest string) (int64, error) {
	res := r.conn(ctx).Model(&accountdomain.Account{}).
		Where("username = ?", oldUsername).
		Updates(map[string]any{"username": newUsername, "password": digest})
	return res.RowsAffected, res.Error
}

func (r *PostgresRepository) UpdatePicture(ctx context.Context, username string, assetID int64) (int64, error) {
	res := r.conn(ctx).Model(&accountdomain.Account{}).
		Where("username = ?", username).
		Update("picture", assetID)
	return res.RowsAffected, res.Error
}

func (r *PostgresRepository) UpdatePrefs(ctx context.Context, username string, prefs accountdomain.Settings) (int64, error) {
	res := r.conn(ctx).Model(&accountdomain.Account{}).
		Where("username = ?", username).
		Update("prefs", prefs)
	return res.RowsAffected, res.Error
}

func (r *PostgresRepository) Delete(ctx context.Context, username string) (int64, error) {
	res := r.conn(ctx).Delete(&accountdomain.Account{}, "username = ?", username)
	return res.RowsAffected, res.Error
}

func (r *PostgresRepository) InsertInvite(ctx context.Context, inv *accountdomain.Invite) error {
	return r.conn(ctx).Create(inv).Error
}

func (r *PostgresRepository) ListInvites(ctx context.Context) ([]accountdomain.Invite, error) {
	var invites []accountdomain.Invite
	if err := r.conn(ctx).Order("date_added asc").Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *PostgresRepository) IsInviteUnclaimed(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.conn(ctx).Raw(`
		SELECT COUNT(1) FROM invites
		WHERE id = ?
		  AND id NOT IN (SELECT claimed_invite FROM users)
	`, tokenID).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) DeleteUnclaimedInvite(ctx context.Context, tokenID string) (int64, error) {
	res := r.conn(ctx).Exec(`
		DELETE FROM invites
		WHERE id = ?
		  AND id NOT IN (SELECT claimed_invite FROM users)
	`, tokenID)
	return res.RowsAffected, res.Error
}
