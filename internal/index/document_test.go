package index

import (
	"strings"
	"testing"

	"github.com/oooAHOYooo/ahoy-search/internal/catalog"
)

func TestFromTrack(t *testing.T) {
	doc, ok := FromTrack(catalog.Track{
		ID:              "t1",
		Title:           "Midnight City",
		Artist:          "M83",
		Album:           "Hurry Up, We're Dreaming",
		Genre:           "electronic",
		Description:     "A synth-pop anthem",
		Tags:            []string{"synth", "dreamy"},
		CoverArt:        "/img/t1.jpg",
		DurationSeconds: 243,
		AddedDate:       "2024-01-15",
	})
	if !ok {
		t.Fatal("expected track with id to build")
	}
	if doc.Kind != KindTrack {
		t.Errorf("Kind = %q, want %q", doc.Kind, KindTrack)
	}
	if doc.URL != "/music#t1" {
		t.Errorf("URL = %q, want /music#t1", doc.URL)
	}
	if doc.Summary != "M83 - Hurry Up, We're Dreaming" {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if doc.Artist != "M83" || doc.CoverArt != "/img/t1.jpg" || doc.Duration != 243 {
		t.Errorf("display fields not carried: %+v", doc)
	}
	for _, term := range []string{"midnight", "city", "m83", "synth", "electronic", "anthem"} {
		if _, ok := doc.Terms[term]; !ok {
			t.Errorf("expected term %q in document terms", term)
		}
	}
	if _, ok := doc.Terms["a"]; ok {
		t.Error("single-rune token should not be indexed")
	}
}

func TestFromTrackMissingID(t *testing.T) {
	if _, ok := FromTrack(catalog.Track{Title: "No ID"}); ok {
		t.Error("track without id must be skipped")
	}
	if _, ok := FromShow(catalog.Show{Title: "No ID"}); ok {
		t.Error("show without id must be skipped")
	}
	if _, ok := FromArtist(catalog.Artist{Name: "No ID"}); ok {
		t.Error("artist without id must be skipped")
	}
}

func TestFromShow(t *testing.T) {
	doc, ok := FromShow(catalog.Show{
		ID:            "s1",
		Title:         "Harbor Nights",
		Host:          "Dana Reyes",
		Description:   strings.Repeat("x", 150),
		Category:      "talk",
		Tags:          []string{"late-night"},
		Thumbnail:     "/img/s1.jpg",
		PublishedDate: "2023-11-02",
	})
	if !ok {
		t.Fatal("expected show with id to build")
	}
	if doc.URL != "/shows#s1" {
		t.Errorf("URL = %q, want /shows#s1", doc.URL)
	}
	if want := strings.Repeat("x", 120) + "..."; doc.Summary != want {
		t.Errorf("Summary not truncated to 120 runes: got %d runes", len([]rune(doc.Summary)))
	}
	if doc.AddedDate != "2023-11-02" {
		t.Errorf("AddedDate should fall back to published date, got %q", doc.AddedDate)
	}
	if doc.Host != "Dana Reyes" || doc.Thumbnail != "/img/s1.jpg" {
		t.Errorf("display fields not carried: %+v", doc)
	}
}

func TestPublishedDateFallbackAllKinds(t *testing.T) {
	track, _ := FromTrack(catalog.Track{ID: "t1", PublishedDate: "2024-01-05"})
	if track.AddedDate != "2024-01-05" {
		t.Errorf("track AddedDate = %q, want published date fallback", track.AddedDate)
	}
	artist, _ := FromArtist(catalog.Artist{ID: "a1", Name: "X", PublishedDate: "2024-02-06"})
	if artist.AddedDate != "2024-02-06" {
		t.Errorf("artist AddedDate = %q, want published date fallback", artist.AddedDate)
	}
	// An explicit added date wins over the published date.
	track, _ = FromTrack(catalog.Track{ID: "t2", AddedDate: "2023-12-31", PublishedDate: "2024-01-05"})
	if track.AddedDate != "2023-12-31" {
		t.Errorf("track AddedDate = %q, want the added date kept", track.AddedDate)
	}
}

func TestFromShowShortDescription(t *testing.T) {
	doc, _ := FromShow(catalog.Show{ID: "s2", Description: "short"})
	if doc.Summary != "short" {
		t.Errorf("short description must not gain an ellipsis, got %q", doc.Summary)
	}
}

func TestFromArtist(t *testing.T) {
	doc, ok := FromArtist(catalog.Artist{
		ID:          "a1",
		Name:        "Beach Fossils",
		Description: "Dream pop from Brooklyn",
		Genres:      []string{"dream-pop", "indie"},
		Image:       "/img/a1.jpg",
		AddedDate:   "2022-06-30",
	})
	if !ok {
		t.Fatal("expected artist with id to build")
	}
	if doc.URL != "/artists#a1" {
		t.Errorf("URL = %q, want /artists#a1", doc.URL)
	}
	if doc.Title != "Beach Fossils" || doc.Name != "Beach Fossils" {
		t.Errorf("artist name should populate Title and Name: %+v", doc)
	}
	if len(doc.Genres) != 2 {
		t.Errorf("Genres not carried: %v", doc.Genres)
	}
	for _, term := range []string{"beach", "fossils", "dream", "pop", "indie"} {
		if _, ok := doc.Terms[term]; !ok {
			t.Errorf("expected term %q in document terms", term)
		}
	}
}

func TestFieldText(t *testing.T) {
	doc, _ := FromTrack(catalog.Track{ID: "t1", Title: "Song", Album: "LP"})
	if got := doc.FieldText("album"); got != "LP" {
		t.Errorf("FieldText(album) = %q, want LP", got)
	}
	if got := doc.FieldText("nope"); got != "" {
		t.Errorf("FieldText(nope) = %q, want empty", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"track", "show", "artist"} {
		if _, ok := ParseKind(s); !ok {
			t.Errorf("ParseKind(%q) should succeed", s)
		}
	}
	for _, s := range []string{"", "music", "Track", "podcast"} {
		if _, ok := ParseKind(s); ok {
			t.Errorf("ParseKind(%q) should fail", s)
		}
	}
}
