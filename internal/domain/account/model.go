package account

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Account is a catalog user. Password holds the salted digest, never the
// plaintext. ClaimedInvite records which invite token the registration
// consumed; its presence is what marks the token as spent.
type Account struct {
	Username      string   `gorm:"primaryKey" json:"username"`
	Password      string   `gorm:"not null" json:"-"`
	Roles         Roles    `gorm:"type:text;not null" json:"roles"`
	Prefs         Settings `gorm:"type:jsonb;not null" json:"prefs"`
	ClaimedInvite string   `gorm:"column:claimed_invite;not null" json:"-"`
	Picture       *int64   `gorm:"column:picture" json:"picture"`
}

func (Account) TableName() string { return "users" }

// Invite is a single-use registration token. It stays valid until some
// account claims it; revocation removes unclaimed tokens only.
type Invite struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	DateAdded time.Time `gorm:"column:date_added" json:"date_added"`
}

func (Invite) TableName() string { return "invites" }

// Roles is an opaque set of capability strings, stored comma-joined.
type Roles []string

func (r Roles) Value() (driver.Value, error) {
	return strings.Join(r, ","), nil
}

func (r *Roles) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("roles: cannot scan %T", value)
	}
	if raw == "" {
		*r = nil
		return nil
	}
	*r = strings.Split(raw, ",")
	return nil
}

func (r Roles) Has(role string) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// Settings is the per-account preferences blob, persisted as JSON.
type Settings struct {
	Theme                   string            `json:"theme"`
	ShowCardNames           bool              `json:"show_card_names"`
	DefaultSubtitleLanguage *string           `json:"default_subtitle_language"`
	DefaultAudioLanguage    *string           `json:"default_audio_language"`
	DefaultVideoQuality     string            `json:"default_video_quality"`
	ExternalArgs            map[string]string `json:"external_args,omitempty"`
}

func DefaultSettings() Settings {
	english := "english"
	return Settings{
		Theme:                   "dark",
		ShowCardNames:           true,
		DefaultSubtitleLanguage: &english,
		DefaultAudioLanguage:    &english,
		DefaultVideoQuality:     "directplay",
	}
}

func (s Settings) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes the stored blob and falls back to defaults on garbage so a
// corrupted prefs column never takes the account down with it.
func (s *Settings) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*s = DefaultSettings()
		return nil
	default:
		return fmt.Errorf("settings: cannot scan %T", value)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		*s = DefaultSettings()
	}
	return nil
}
