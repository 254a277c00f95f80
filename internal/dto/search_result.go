package dto

// SearchResult is the public projection of one search hit.
// Optional fields are empty strings when the stored article lacks them.
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Description   string  `json:"description"`
	Source        string  `json:"source"`
	DatePublished string  `json:"date_published"`
	Image         string  `json:"image"`
	Score         float64 `json:"score"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Title string `json:"title,omitempty"`
}
