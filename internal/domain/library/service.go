package library

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"media-catalog-go/internal/events"
	"media-catalog-go/pkg/logger"
)

// Scanner is the external collaborator kicked off after a library is
// created. It acquires its own transactions and publishes its own events;
// the service only hands it the new library id.
type Scanner interface {
	Scan(ctx context.Context, libraryID int64)
}

type Service struct {
	repo    Repository
	bus     *events.Bus
	cascade *Cascade
	scanner Scanner
	log     logger.Logger
}

func NewService(repo Repository, bus *events.Bus, cascade *Cascade, scanner Scanner, log logger.Logger) *Service {
	return &Service{
		repo:    repo,
		bus:     bus,
		cascade: cascade,
		scanner: scanner,
		log:     log,
	}
}

// List returns all visible libraries ordered by name.
func (s *Service) List(ctx context.Context) ([]Library, error) {
	libs, err := s.repo.ListVisible(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
	return libs, nil
}

// Create inserts a new library, then starts the scanner and announces the
// library to subscribers. Both happen after the writer transaction has
// committed and the writer slot is free again.
func (s *Service) Create(ctx context.Context, spec NewLibrary) (int64, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return 0, fmt.Errorf("name is required")
	}

	lib := Library{
		Name:      spec.Name,
		Location:  spec.Location,
		MediaType: spec.MediaType,
	}

	var id int64
	err := s.repo.Write(ctx, func(r Repository) error {
		newID, err := r.Insert(ctx, &lib)
		if err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.scanner != nil {
		// Detached from the request: cancelling the create call must not
		// kill the scan.
		go s.scanner.Scan(context.Background(), id)
	}

	s.bus.Publish(events.Message{ResourceID: id, EventType: events.TypeCreated})

	return id, nil
}

// Get returns a visible library or ErrLibraryNotFound. Hidden libraries
// count as absent.
func (s *Service) Get(ctx context.Context, id int64) (*Library, error) {
	return s.repo.Get(ctx, id)
}

// Delete hides the library synchronously and schedules the physical
// cascade. By the time it returns nil the hidden flag is committed, the
// Removed event is published and the cascade job is queued; the cascade
// itself is best-effort and may still be pending. A second Delete of the
// same id reports ErrLibraryNotFound rather than succeeding, so
// double-delete races stay visible to the caller.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.Write(ctx, func(r Repository) error {
		affected, err := r.MarkHidden(ctx, id)
		if err != nil {
			return err
		}
		if affected < 1 {
			return ErrLibraryNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bus.Publish(events.Message{ResourceID: id, EventType: events.TypeRemoved})
	s.cascade.Enqueue(id)

	return nil
}

// Media returns the library's matched entries grouped under the library
// name, sorted by entry name.
func (s *Service) Media(ctx context.Context, id int64) (map[string][]MediaRecord, error) {
	lib, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	return map[string][]MediaRecord{lib.Name: records}, nil
}

// Unmatched returns files the matcher has not claimed, grouped by the
// parent directory of the file (or the file name itself for files at the
// location root).
func (s *Service) Unmatched(ctx context.Context, id int64) (map[string][]UnmatchedFile, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	files, err := s.repo.ListUnmatched(ctx, id)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]UnmatchedFile)
	for _, f := range files {
		grouped[unmatchedGroup(f.TargetFile)] = append(grouped[unmatchedGroup(f.TargetFile)], f)
	}
	return grouped, nil
}

func unmatchedGroup(targetFile string) string {
	dir := filepath.Base(filepath.Dir(targetFile))
	if dir == "." || dir == string(filepath.Separator) {
		return filepath.Base(targetFile)
	}
	return dir
}
