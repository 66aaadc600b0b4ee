package search

// SortRelevance orders results by descending score; SortRecent by the raw
// added-date string, descending.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
)

// Request is one search invocation. Zero values pick up engine defaults.
type Request struct {
	Query  string
	Limit  int
	Offset int
	Kinds  []string
	Sort   string
}

// Result is a single ranked hit. Kind-specific fields are populated only for
// the matching kind.
type Result struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Genres  []string `json:"genres"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet"`

	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Duration  int    `json:"duration,omitempty"`
	CoverArt  string `json:"cover_art,omitempty"`
	Host      string `json:"host,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Name      string `json:"name,omitempty"`
	Image     string `json:"image,omitempty"`
}

// Response is the full result of a search call. Total counts all matching
// candidates before pagination.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
