package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	librarydomain "media-catalog-go/internal/domain/library"
	"media-catalog-go/pkg/logger"
)

var mediaExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".m4v":  {},
	".mov":  {},
	".webm": {},
}

// Scanner is the filesystem collaborator kicked off after library
// creation. It walks the library location and registers every media file
// it finds as an unmatched entry; matching against metadata providers is
// someone else's job. It acquires its own transactions and absorbs its own
// failures.
type Scanner struct {
	repo librarydomain.Repository
	log  logger.Logger
}

func New(repo librarydomain.Repository, log logger.Logger) *Scanner {
	return &Scanner{repo: repo, log: log}
}

func (s *Scanner) Scan(ctx context.Context, libraryID int64) {
	lib, err := s.repo.Get(ctx, libraryID)
	if err != nil {
		s.log.Warn("scanner: library vanished before scan", "library_id", libraryID, "err", err)
		return
	}
	if lib.Location == "" {
		s.log.Info("scanner: library has no location, nothing to scan", "library_id", libraryID)
		return
	}

	var files []librarydomain.MediaFile
	walkErr := filepath.WalkDir(lib.Location, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := mediaExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		files = append(files, librarydomain.MediaFile{
			LibraryID:  libraryID,
			RawName:    name,
			TargetFile: path,
		})
		return nil
	})
	if walkErr != nil {
		s.log.Error("scanner: walk failed", "library_id", libraryID, "location", lib.Location, "err", walkErr)
		return
	}
	if len(files) == 0 {
		s.log.Info("scanner: no media files found", "library_id", libraryID, "location", lib.Location)
		return
	}

	err = s.repo.Write(ctx, func(r librarydomain.Repository) error {
		for i := range files {
			if err := r.InsertFile(ctx, &files[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("scanner: failed to record media files", "library_id", libraryID, "err", err)
		return
	}

	s.log.Info("scanner: registered media files", "library_id", libraryID, "count", len(files))
}
