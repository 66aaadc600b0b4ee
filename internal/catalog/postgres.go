package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/oooAHOYooo/ahoy-search/pkg/postgres"
)

// PostgresSource loads catalog snapshots from the content database. Each
// kind lives in its own table; array-valued columns (tags, genres) are
// PostgreSQL text[] scanned through pq.Array.
type PostgresSource struct {
	client *postgres.Client
	logger *slog.Logger
}

// NewPostgresSource wraps an existing postgres client.
func NewPostgresSource(client *postgres.Client) *PostgresSource {
	return &PostgresSource{
		client: client,
		logger: slog.Default().With("component", "catalog-postgres"),
	}
}

// Load reads the full tracks, shows, and artists tables into a Snapshot.
func (s *PostgresSource) Load(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	var err error

	if snap.Tracks, err = s.loadTracks(ctx); err != nil {
		return nil, fmt.Errorf("loading tracks: %w", err)
	}
	if snap.Shows, err = s.loadShows(ctx); err != nil {
		return nil, fmt.Errorf("loading shows: %w", err)
	}
	if snap.Artists, err = s.loadArtists(ctx); err != nil {
		return nil, fmt.Errorf("loading artists: %w", err)
	}

	s.logger.Debug("catalog snapshot loaded",
		"tracks", len(snap.Tracks),
		"shows", len(snap.Shows),
		"artists", len(snap.Artists),
	)
	return &snap, nil
}

func (s *PostgresSource) loadTracks(ctx context.Context) ([]Track, error) {
	const q = `
		SELECT id, title, artist, album, genre, description, tags,
		       cover_art, duration_seconds, added_date, published_date
		FROM tracks
		ORDER BY added_date, id`
	rows, err := s.client.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Artist, &t.Album, &t.Genre, &t.Description,
			pq.Array(&t.Tags), &t.CoverArt, &t.DurationSeconds,
			&t.AddedDate, &t.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (s *PostgresSource) loadShows(ctx context.Context) ([]Show, error) {
	const q = `
		SELECT id, title, host, description, category, summary, tags,
		       thumbnail, duration_seconds, added_date, published_date
		FROM shows
		ORDER BY added_date, id`
	rows, err := s.client.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shows []Show
	for rows.Next() {
		var sh Show
		if err := rows.Scan(
			&sh.ID, &sh.Title, &sh.Host, &sh.Description, &sh.Category,
			&sh.Summary, pq.Array(&sh.Tags), &sh.Thumbnail,
			&sh.DurationSeconds, &sh.AddedDate, &sh.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scanning show row: %w", err)
		}
		shows = append(shows, sh)
	}
	return shows, rows.Err()
}

func (s *PostgresSource) loadArtists(ctx context.Context) ([]Artist, error) {
	const q = `
		SELECT id, name, description, summary, genres, tags, image,
		       added_date, published_date
		FROM artists
		ORDER BY added_date, id`
	rows, err := s.client.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Description, &a.Summary,
			pq.Array(&a.Genres), pq.Array(&a.Tags), &a.Image,
			&a.AddedDate, &a.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scanning artist row: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

var _ Source = (*PostgresSource)(nil)
