package library

import "context"

// Repository is the storage contract for libraries and their dependent
// rows. Write runs fn inside the system-wide exclusive writer transaction
// (committing on nil, rolling back otherwise); reads go straight to the
// reader pool and observe committed state only.
type Repository interface {
	Write(ctx context.Context, fn func(Repository) error) error

	ListVisible(ctx context.Context) ([]Library, error)
	Get(ctx context.Context, id int64) (*Library, error)
	Insert(ctx context.Context, lib *Library) (int64, error)

	// MarkHidden flips the hidden flag on a visible library and reports how
	// many rows changed (0 or 1). Zero means absent or already hidden; the
	// caller decides what that implies.
	MarkHidden(ctx context.Context, id int64) (int64, error)

	DeleteLibrary(ctx context.Context, id int64) error
	DeleteMediaByLibrary(ctx context.Context, id int64) error
	DeleteFilesByLibrary(ctx context.Context, id int64) error

	ListMedia(ctx context.Context, libraryID int64) ([]MediaRecord, error)
	ListUnmatched(ctx context.Context, libraryID int64) ([]UnmatchedFile, error)
	InsertFile(ctx context.Context, file *MediaFile) error
}
