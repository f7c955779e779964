package library

// Library is the removable catalog resource. Hidden is the soft-delete
// flag: a hidden library is logically gone to every read path while its
// rows await the cascade.
type Library struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Location  string `gorm:"not null;default:''" json:"location"`
	MediaType string `gorm:"column:media_type;not null;default:''" json:"media_type"`
	Hidden    bool   `gorm:"not null;default:false" json:"-"`
}

func (Library) TableName() string { return "libraries" }

// Media is a matched catalog entry belonging to exactly one library.
type Media struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID  int64   `gorm:"column:library_id;not null;index" json:"library_id"`
	Name       string  `gorm:"not null" json:"name"`
	PosterPath *string `gorm:"column:poster_path" json:"poster_path"`
}

func (Media) TableName() string { return "media" }

// MediaFile is a discovered on-disk file. MediaID is nil while the file is
// unmatched.
type MediaFile struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	LibraryID  int64  `gorm:"column:library_id;not null;index" json:"library_id"`
	MediaID    *int64 `gorm:"column:media_id" json:"media_id"`
	RawName    string `gorm:"column:raw_name;not null" json:"raw_name"`
	TargetFile string `gorm:"column:target_file;not null" json:"target_file"`
	Duration   *int64 `gorm:"column:duration" json:"duration"`
}

func (MediaFile) TableName() string { return "media_files" }

// MediaRecord is the lightweight row returned by media listings.
type MediaRecord struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	PosterPath *string `json:"poster_path"`
}

// UnmatchedFile is the lightweight row returned for files the matcher has
// not claimed yet.
type UnmatchedFile struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Duration   *int64 `json:"duration"`
	TargetFile string `json:"target_file"`
}

// NewLibrary carries the caller-supplied fields for library creation.
type NewLibrary struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	MediaType string `json:"media_type"`
}
