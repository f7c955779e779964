package library

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"media-catalog-go/internal/db"
	librarydomain "media-catalog-go/internal/domain/library"
)

// PostgresRepository implements the library repository over the connection
// arbiter: reads go to the reader pool, Write closures run on the single
// exclusive writer transaction.
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

func (r *PostgresRepository) Write(ctx context.Context, fn func(librarydomain.Repository) error) error {
	if r.tx != nil {
		// Already inside the writer transaction.
		return fn(r)
	}
	return r.arbiter.Write(ctx, func(tx *gorm.DB) error {
		return fn(&PostgresRepository{arbiter: r.arbiter, tx: tx})
	})
}

func (r *PostgresRepository) ListVisible(ctx context.Context) ([]librarydomain.Library, error) {
	var libs []librarydomain.Library
	if err := r.conn(ctx).Where("hidden = ?", false).Find(&libs).Error; err != nil {
		return nil, err
	}
	return libs, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*librarydomain.Library, error) {
	var lib librarydomain.Library
	err := r.conn(ctx).Where("id = ? AND hidden = ?", id, false).First(&lib).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, librarydomain.ErrLibraryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, lib *librarydomain.Library) (int64, error) {
	if err := r.conn(ctx).Create(lib).Error; err != nil {
		return 0, err
	}
	return lib.ID, nil
}

func (r *PostgresRepository) MarkHidden(ctx context.Context, id int64) (int64, error) {
	res := r.conn(ctx).Model(&librarydomain.Library{}).
		Where("id = ? AND hidden = ?", id, false).
		Update("hidden", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *PostgresRepository) DeleteLibrary(ctx context.Context, id int64) error {
	return r.conn(ctx).Delete(&librarydomain.Library{}, "id = ?", id).Error
}

func (r *PostgresRepository) DeleteMediaByLibrary(ctx context.Context, id int64) error {
	return r.conn(ctx).Where("library_id = ?", id).Delete(&librarydomain.Media{}).Error
}

func (r *PostgresRepository) DeleteFilesByLibrary(ctx context.Context, id int64) error {
	return r.conn(ctx).Where("library_id = ?", id).Delete(&librarydomain.MediaFile{}).Error
}

func (r *PostgresRepository) ListMedia(ctx context.Context, libraryID int64) ([]librarydomain.MediaRecord, error) {
	var records []librarydomain.MediaRecord
	if err := r.conn(ctx).
		Table("media").
		Select("id, name, poster_path").
		Where("library_id = ?", libraryID).
		Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PostgresRepository) ListUnmatched(ctx context.Context, libraryID int64) ([]librarydomain.UnmatchedFile, error) {
	var files []librarydomain.UnmatchedFile
	if err := r.conn(ctx).
		Table("media_files").
		Select("id, raw_name AS name, duration, target_file").
		Where("library_id = ? AND media_id IS NULL", libraryID).
		Scan(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *PostgresRepository) InsertFile(ctx context.Context, file *librarydomain.MediaFile) error {
	return r.conn(ctx).Create(file).Error
}
