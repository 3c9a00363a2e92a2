package store

import "time"

// Article is a news item, identified by its URL.
// Field names follow the newsapi.org payload, so the same
// encoding is used for the API responses and for the stored bookmarks.
type Article struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URLToImage  string    `json:"urlToImage"`
	Author      string    `json:"author"`
	Source      Source    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Source is a publisher of the article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SameAs reports whether two articles are the same entity.
func (a Article) SameAs(other Article) bool { return a.URL == other.URL }
