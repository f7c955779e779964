package account

import (
	"context"
	"errors"
	"sync"
	"testing"

	"media-catalog-go/pkg/logger"
)

type fakeRepo struct {
	wmu sync.Mutex
	mu  sync.Mutex

	accounts map[string]*Account
	invites  map[string]*Invite
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts: make(map[string]*Account),
		invites:  make(map[string]*Invite),
	}
}

func (r *fakeRepo) Write(ctx context.Context, fn func(Repository) error) error {
	r.wmu.Lock()
	defer r.wmu.Unlock()
	return fn(r)
}

func (r *fakeRepo) Get(ctx context.Context, username string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[username]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *acct
	return &copied, nil
}

func (r *fakeRepo) List(ctx context.Context) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Account
	for _, acct := range r.accounts {
		out = append(out, *acct)
	}
	return out, nil
}

func (r *fakeRepo) Insert(ctx context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acct.Username]; ok {
		return ErrUsernameTaken
	}
	copied := *acct
	r.accounts[acct.Username] = &copied
	return nil
}

func (r *fakeRepo) UpdatePassword(ctx context.Context, username, digest string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[username]
	if !ok {
		return 0, nil
	}
	acct.Password = digest
	return 1, nil
}

func (r *fakeRepo) UpdateUsername(ctx context.Context, oldUsername, newUsername, digest string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[oldUsername]
	if !ok {
		return 0, nil
	}
	delete(r.accounts, oldUsername)
	acct.Username = newUsername
	acct.Password = digest
	r.accounts[newUsername] = acct
	return 1, nil
}

func (r *fakeRepo) UpdatePicture(ctx context.Context, username string, assetID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[username]
	if !ok {
		return 0, nil
	}
	acct.Picture = &assetID
	return 1, nil
}

func (r *fakeRepo) UpdatePrefs(ctx context.Context, username string, prefs Settings) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct, ok := r.accounts[username]
	if !ok {
		return 0, nil
	}
	acct.Prefs = prefs
	return 1, nil
}

func (r *fakeRepo) Delete(ctx context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[username]; !ok {
		return 0, nil
	}
	delete(r.accounts, username)
	return 1, nil
}

func (r *fakeRepo) InsertInvite(ctx context.Context, inv *Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *inv
	r.invites[inv.ID] = &copied
	return nil
}

func (r *fakeRepo) ListInvites(ctx context.Context) ([]Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Invite
	for _, inv := range r.invites {
		out = append(out, *inv)
	}
	return out, nil
}

func (r *fakeRepo) IsInviteUnclaimed(ctx context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[tokenID]; !ok {
		return false, nil
	}
	for _, acct := range r.accounts {
		if acct.ClaimedInvite == tokenID {
			return false, nil
		}
	}
	return true, nil
}

func (r *fakeRepo) DeleteUnclaimedInvite(ctx context.Context, tokenID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[tokenID]; !ok {
		return 0, nil
	}
	for _, acct := range r.accounts {
		if acct.ClaimedInvite == tokenID {
			return 0, nil
		}
	}
	delete(r.invites, tokenID)
	return 1, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, logger.Discard())
}

func seedInvite(repo *fakeRepo, token string) {
	repo.invites[token] = &Invite{ID: token}
}

func TestRegisterSuccess(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	svc := newTestService(repo)

	username, err := svc.Register(context.Background(), "alice", "hunter2", []string{"owner"}, "tok-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected username alice, got %q", username)
	}

	acct := repo.accounts["alice"]
	if acct == nil {
		t.Fatalf("account not stored")
	}
	if acct.Password == "hunter2" {
		t.Fatalf("plaintext stored as password")
	}
	if !Verify("alice", acct.Password, "hunter2") {
		t.Fatalf("stored digest does not verify")
	}
	if acct.ClaimedInvite != "tok-1" {
		t.Fatalf("invite not claimed, got %q", acct.ClaimedInvite)
	}
	if !acct.Roles.Has("owner") {
		t.Fatalf("roles not stored, got %v", acct.Roles)
	}
}

func TestRegisterInvalidToken(t *testing.T) {
	svc := newTestService(newFakeRepo())
	if _, err := svc.Register(context.Background(), "alice", "hunter2", nil, "missing"); !errors.Is(err, ErrInvalidInviteToken) {
		t.Fatalf("expected ErrInvalidInviteToken, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	seedInvite(repo, "tok-2")
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "alice", "hunter2", nil, "tok-1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "alice", "other", nil, "tok-2"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterClaimRace(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	svc := newTestService(repo)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, name := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), name, "pw", nil, "tok-1")
			results <- err
		}(name)
	}
	wg.Wait()
	close(results)

	var wins, rejections int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidInviteToken):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || rejections != 1 {
		t.Fatalf("expected one winner and one rejection, got %d/%d", wins, rejections)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "alice", "hunter2", nil, "tok-1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	acct, err := svc.Authenticate(context.Background(), "alice", "hunter2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if acct.Username != "alice" {
		t.Fatalf("unexpected account %+v", acct)
	}

	if _, err := svc.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "alice", "hunter2", nil, "tok-1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.SetPassword(context.Background(), "alice", "newpw"); err != nil {
		t.Fatalf("set password failed: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "newpw"); err != nil {
		t.Fatalf("expected new password to verify, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected old password rejected, got %v", err)
	}

	if err := svc.SetPassword(context.Background(), "nobody", "pw"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRenameRehashesDigest(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "alice", "hunter2", nil, "tok-1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.Rename(context.Background(), "alice", "alicia", "hunter2"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	// The digest is salted by username, so it must verify under the new one.
	if _, err := svc.Authenticate(context.Background(), "alicia", "hunter2"); err != nil {
		t.Fatalf("expected credentials to survive rename, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", "hunter2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected old username gone, got %v", err)
	}

	if err := svc.Rename(context.Background(), "alicia", "x", "wrongpw"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
	}
}

func TestRevokeInvite(t *testing.T) {
	repo := newFakeRepo()
	seedInvite(repo, "tok-1")
	seedInvite(repo, "tok-2")
	svc := newTestService(repo)

	if _, err := svc.Register(context.Background(), "alice", "pw", nil, "tok-1"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Claimed tokens stay put.
	if count, err := svc.RevokeInvite(context.Background(), "tok-1"); err != nil || count != 0 {
		t.Fatalf("expected count 0 for claimed token, got %d err %v", count, err)
	}
	// Unclaimed tokens go away.
	if count, err := svc.RevokeInvite(context.Background(), "tok-2"); err != nil || count != 1 {
		t.Fatalf("expected count 1 for unclaimed token, got %d err %v", count, err)
	}
	if count, err := svc.RevokeInvite(context.Background(), "tok-2"); err != nil || count != 0 {
		t.Fatalf("expected count 0 for absent token, got %d err %v", count, err)
	}
}

func TestIssueInvite(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	token, err := svc.IssueInvite(context.Background())
	if err != nil {
		t.Fatalf("issue invite failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token id")
	}
	if _, ok := repo.invites[token]; !ok {
		t.Fatalf("token not recorded")
	}

	second, err := svc.IssueInvite(context.Background())
	if err != nil {
		t.Fatalf("second issue failed: %v", err)
	}
	if second == token {
		t.Fatalf("expected globally unique tokens")
	}
}
