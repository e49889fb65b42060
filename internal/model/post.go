package model

// Post is a projection of the posts table; the batch only ever reads
// id/title/content/url and writes summary or content.
type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}
