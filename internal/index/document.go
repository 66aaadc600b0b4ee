package index

import (
	"fmt"
	"strings"

	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
	"github.com/oooAHOYooo/ahoy-search/internal/index/analyzer"
)

// Kind identifies which catalog batch a document came from.
type Kind string

const (
	KindTrack  Kind = "track"
	KindShow   Kind = "show"
	KindArtist Kind = "artist"
)

// ParseKind validates a kind string from the API boundary.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindTrack, KindShow, KindArtist:
		return Kind(s), true
	}
	return "", false
}

// Field is one named searchable text field in extraction order. The order is
// observable: snippet selection breaks ties by the earliest field.
type Field struct {
	Name string
	Text string
}

// Document is the indexed, normalised representation of one catalog record.
// The index exclusively owns every Document it holds.
type Document struct {
	ID        string
	Kind      Kind
	Title     string
	URL       string
	Summary   string
	Tags      []string
	Genres    []string
	Duration  int
	AddedDate string

	// Fields keeps the original pre-tokenization text per field for
	// snippet extraction; Terms is the union of all field terms and
	// drives fuzzy-candidate enumeration.
	Fields []Field
	Terms  map[string]struct{}

	// Kind-specific display fields; empty when not applicable.
	CoverArt  string
	Thumbnail string
	Image     string
	Artist    string
	Host      string
	Name      string
}

const summaryMax = 120

// FromTrack builds a Document from a raw track record. ok is false when the
// record has no id; the caller skips it.
func FromTrack(t catalog.Track) (*Document, bool) {
	if t.ID == "" {
		return nil, false
	}
	fields := []Field{
		{"title", t.Title},
		{"artist", t.Artist},
		{"album", t.Album},
		{"tags", strings.Join(t.Tags, " ")},
		{"genres", t.Genre},
		{"description", t.Description},
	}
	return &Document{
		ID:        t.ID,
		Kind:      KindTrack,
		Title:     t.Title,
		URL:       fmt.Sprintf("/music#%s", t.ID),
		Summary:   fmt.Sprintf("%s - %s", t.Artist, t.Album),
		Tags:      t.Tags,
		Duration:  t.DurationSeconds,
		AddedDate: addedOrPublished(t.AddedDate, t.PublishedDate),
		Fields:    fields,
		Terms:     collectTerms(fields),
		CoverArt:  t.CoverArt,
		Artist:    t.Artist,
	}, true
}

// FromShow builds a Document from a raw show record.
func FromShow(s catalog.Show) (*Document, bool) {
	if s.ID == "" {
		return nil, false
	}
	fields := []Field{
		{"title", s.Title},
		{"host", s.Host},
		{"description", s.Description},
		{"tags", strings.Join(s.Tags, " ")},
		{"category", s.Category},
		{"summary", s.Summary},
	}
	return &Document{
		ID:        s.ID,
		Kind:      KindShow,
		Title:     s.Title,
		URL:       fmt.Sprintf("/shows#%s", s.ID),
		Summary:   truncate(s.Description, summaryMax),
		Tags:      s.Tags,
		Duration:  s.DurationSeconds,
		AddedDate: addedOrPublished(s.AddedDate, s.PublishedDate),
		Fields:    fields,
		Terms:     collectTerms(fields),
		Thumbnail: s.Thumbnail,
		Host:      s.Host,
	}, true
}

// FromArtist builds a Document from a raw artist record.
func FromArtist(a catalog.Artist) (*Document, bool) {
	if a.ID == "" {
		return nil, false
	}
	fields := []Field{
		{"name", a.Name},
		{"description", a.Description},
		{"genres", strings.Join(a.Genres, " ")},
		{"tags", strings.Join(a.Tags, " ")},
		{"summary", a.Summary},
	}
	return &Document{
		ID:        a.ID,
		Kind:      KindArtist,
		Title:     a.Name,
		URL:       fmt.Sprintf("/artists#%s", a.ID),
		Summary:   truncate(a.Description, summaryMax),
		Tags:      a.Tags,
		Genres:    a.Genres,
		AddedDate: addedOrPublished(a.AddedDate, a.PublishedDate),
		Fields:    fields,
		Terms:     collectTerms(fields),
		Image:     a.Image,
		Name:      a.Name,
	}, true
}

// FieldText returns the retained original text for a field name, or "".
func (d *Document) FieldText(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Text
		}
	}
	return ""
}

// addedOrPublished prefers the added date, falling back to the published
// date for feeds that only carry the latter.
func addedOrPublished(added, published string) string {
	if added == "" {
		return published
	}
	return added
}

func collectTerms(fields []Field) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, f := range fields {
		for _, term := range analyzer.Tokenize(f.Text) {
			terms[term] = struct{}{}
		}
	}
	return terms
}

// truncate shortens s to max runes, appending an ellipsis when it was cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
