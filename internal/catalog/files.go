package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/oooAHOYooo/ahoy-search/pkg/config"
)

// FileSource loads catalog snapshots from the JSON files the content
// pipeline drops into the data directory (music.json, shows.json,
// artists.json). The three files are read concurrently; a missing file is
// treated as an empty batch of that kind, not an error.
type FileSource struct {
	dir         string
	musicFile   string
	showsFile   string
	artistsFile string
	logger      *slog.Logger
}

type musicFile struct {
	Tracks []Track `json:"tracks"`
}

type showsFile struct {
	Shows []Show `json:"shows"`
}

type artistsFile struct {
	Artists []Artist `json:"artists"`
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a FileSource for the configured data directory.
func NewFileSource(cfg config.CatalogConfig) *FileSource {
	return &FileSource{
		dir:         cfg.DataDir,
		musicFile:   cfg.MusicFile,
		showsFile:   cfg.ShowsFile,
		artistsFile: cfg.ArtistsFile,
		logger:      slog.Default().With("component", "catalog-files"),
	}
}

// Load reads all three snapshot files concurrently and returns the combined
// Snapshot.
func (s *FileSource) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var data musicFile
		if err := s.readJSON(ctx, s.musicFile, &data); err != nil {
			return err
		}
		snap.Tracks = data.Tracks
		return nil
	})
	g.Go(func() error {
		var data showsFile
		if err := s.readJSON(ctx, s.showsFile, &data); err != nil {
			return err
		}
		snap.Shows = data.Shows
		return nil
	})
	g.Go(func() error {
		var data artistsFile
		if err := s.readJSON(ctx, s.artistsFile, &data); err != nil {
			return err
		}
		snap.Artists = data.Artists
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug("catalog snapshot loaded",
		"tracks", len(snap.Tracks),
		"shows", len(snap.Shows),
		"artists", len(snap.Artists),
	)
	return &snap, nil
}

func (s *FileSource) readJSON(ctx context.Context, name string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("catalog file missing, treating as empty", "file", path)
			return nil
		}
		return fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return nil
}
