// Package catalog defines the typed raw content records supplied to the
// search index and the sources that load them (JSON snapshot files or
// PostgreSQL). Records are permissive: every field is optional and defaults
// to its zero value, mirroring the loosely-shaped content feeds upstream.
package catalog

// Track is one raw music catalog record.
type Track struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Artist          string   `json:"artist"`
	Album           string   `json:"album"`
	Genre           string   `json:"genre"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	CoverArt        string   `json:"cover_art"`
	DurationSeconds int      `json:"duration_seconds"`
	AddedDate       string   `json:"added_date"`
	PublishedDate   string   `json:"published_date"`
}

// Show is one raw show catalog record.
type Show struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Host            string   `json:"host"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Summary         string   `json:"summary"`
	Tags            []string `json:"tags"`
	Thumbnail       string   `json:"thumbnail"`
	DurationSeconds int      `json:"duration_seconds"`
	AddedDate       string   `json:"added_date"`
	PublishedDate   string   `json:"published_date"`
}

// Artist is one raw artist catalog record.
type Artist struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Summary       string   `json:"summary"`
	Genres        []string `json:"genres"`
	Tags          []string `json:"tags"`
	Image         string   `json:"image"`
	AddedDate     string   `json:"added_date"`
	PublishedDate string   `json:"published_date"`
}

// Snapshot is one complete catalog generation, the unit the index is rebuilt
// from. Record order within each batch is preserved by the index.
type Snapshot struct {
	Tracks  []Track
	Shows   []Show
	Artists []Artist
}

// Len returns the total number of raw records across all kinds.
func (s *Snapshot) Len() int {
	return len(s.Tracks) + len(s.Shows) + len(s.Artists)
}
