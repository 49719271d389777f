// Package feed defines the core data model and interfaces for the news
// pipeline: sources, articles, snapshots, and the contracts between the
// scraping, aggregation, and scheduling layers.
package feed

import "time"

// Source is one configured newspaper. The catalogue's slice order defines
// ranking priority, so Source carries no explicit priority field.
type Source struct {
	Key      string   `json:"key"`
	Tamil    string   `json:"tamil"`
	English  string   `json:"english"`
	URL      string   `json:"url"`
	Sections []string `json:"sections,omitempty"`
}

// Candidate is an unclassified (title, absolute URL) pair discovered on a
// listing page. It lives only between headline collection and enrichment.
type Candidate struct {
	Title string
	URL   string
}

// Article is one fully formed feed entry, either enriched (body, timestamp,
// score) or headline-only. Number and IsTrending are assigned during final
// ranking; everything else is fixed at creation.
type Article struct {
	SourceKey     string     `json:"sourceKey"`
	Source        string     `json:"source"`
	SourceEn      string     `json:"sourceEn"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	URL           string     `json:"url"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	TrendingScore int        `json:"trending_score"`
	IsTrending    bool       `json:"is_trending"`
	Number        int        `json:"number"`
}

// Snapshot is the complete, ordered result of one pipeline cycle. It is
// replaced wholesale each cycle, never merged.
type Snapshot struct {
	Articles      []Article `json:"articles"`
	StartedAt     time.Time `json:"started_at"`
	ElapsedMs     int64     `json:"elapsed_ms"`
	TotalCount    int       `json:"total_count"`
	TrendingCount int       `json:"trending_count"`
	SourceCount   int       `json:"source_count"`
}

// FetchResponse carries the raw result of fetching a single page.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
