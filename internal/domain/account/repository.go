package account

import "context"

// Repository is the storage contract for accounts and invite tokens.
// Write runs fn inside the system-wide exclusive writer transaction; the
// remaining methods read committed state from the reader pool unless they
// run inside a Write closure.
type Repository interface {
	Write(ctx context.Context, fn func(Repository) error) error

	Get(ctx context.Context, username string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Insert(ctx context.Context, acct *Account) error
	UpdatePassword(ctx context.Context, username, digest string) (int64, error)
	UpdateUsername(ctx context.Context, oldUsername, newUsername, digest string) (int64, error)
	UpdatePicture(ctx context.Context, username string, assetID int64) (int64, error)
	UpdatePrefs(ctx context.Context, username string, prefs Settings) (int64, error)
	Delete(ctx context.Context, username string) (int64, error)

	InsertInvite(ctx context.Context, inv *Invite) error
	ListInvites(ctx context.Context) ([]Invite, error)

	// IsInviteUnclaimed reports whether the token exists and no account has
	// claimed it. Must be evaluated inside the same writer transaction that
	// performs the claiming insert.
	IsInviteUnclaimed(ctx context.Context, tokenID string) (bool, error)

	// DeleteUnclaimedInvite removes the token only while unclaimed and
	// reports how many rows went away.
	DeleteUnclaimedInvite(ctx context.Context, tokenID string) (int64, error)
}
