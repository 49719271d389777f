// Package scrape orchestrates the two-pass scrape of a single source: fan-out
// fetch of its listing pages, headline classification, then a second fan-out
// that enriches the top candidates with body, timestamp, and trending score.
package scrape

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/extract"
	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
	"github.com/senthilkr/tamil-news-feed/internal/progress"
)

// Config bounds the per-source fan-out.
type Config struct {
	// ListingWorkers caps concurrent listing-page fetches.
	ListingWorkers int
	// EnrichWorkers caps concurrent article-page fetches.
	EnrichWorkers int
	// EnrichCutoff is how many leading candidates get a second-pass fetch;
	// everything after it surfaces as a headline-only article.
	EnrichCutoff int
}

const (
	defaultListingWorkers = 3
	defaultEnrichWorkers  = 4
	defaultEnrichCutoff   = 50
)

// Scraper runs the per-source pipeline. Safe for concurrent use across
// sources; each call builds only its own state.
type Scraper struct {
	fetcher feed.Fetcher
	cfg     Config
	logger  *zap.Logger
	tracker *progress.Tracker
}

// New constructs a Scraper.
func New(fetcher feed.Fetcher, cfg Config, logger *zap.Logger, tracker *progress.Tracker) *Scraper {
	if cfg.ListingWorkers <= 0 {
		cfg.ListingWorkers = defaultListingWorkers
	}
	if cfg.EnrichWorkers <= 0 {
		cfg.EnrichWorkers = defaultEnrichWorkers
	}
	if cfg.EnrichCutoff <= 0 {
		cfg.EnrichCutoff = defaultEnrichCutoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{fetcher: fetcher, cfg: cfg, logger: logger, tracker: tracker}
}

type fetchedPage struct {
	url string
	doc *goquery.Document
}

// ScrapeSource runs the full two-pass scrape for one source. Every discovered
// headline surfaces as an Article; per-page fetch failures degrade the
// affected article to headline-only rather than dropping it.
func (s *Scraper) ScrapeSource(ctx context.Context, src feed.Source) []feed.Article {
	start := time.Now()
	s.tracker.Emit(progress.Event{Stage: progress.StageSourceStart, Source: src.English})

	candidates := s.collectCandidates(ctx, src)
	if len(candidates) == 0 {
		s.logger.Warn("source yielded zero headlines", zap.String("source", src.Key))
		s.tracker.Emit(progress.Event{
			Stage:  progress.StageSourceDone,
			Source: src.English,
			Dur:    time.Since(start),
		})
		return nil
	}

	cutoff := s.cfg.EnrichCutoff
	if cutoff > len(candidates) {
		cutoff = len(candidates)
	}
	articles := s.enrich(ctx, src, candidates[:cutoff])
	for _, cand := range candidates[cutoff:] {
		articles = append(articles, headlineOnly(src, cand))
	}

	s.logger.Info("source scraped",
		zap.String("source", src.Key),
		zap.Int("headlines", len(candidates)),
		zap.Int("articles", len(articles)),
		zap.Duration("elapsed", time.Since(start)),
	)
	s.tracker.Emit(progress.Event{
		Stage:    progress.StageSourceDone,
		Source:   src.English,
		Articles: len(articles),
		Dur:      time.Since(start),
	})
	return articles
}

// collectCandidates fetches the home page and all section pages concurrently,
// then classifies headlines across pages in fetch-completion order,
// deduplicating by URL.
func (s *Scraper) collectCandidates(ctx context.Context, src feed.Source) []feed.Candidate {
	listings := append([]string{src.URL}, src.Sections...)

	pages := make(chan fetchedPage, len(listings))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.ListingWorkers)
	for _, u := range listings {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if doc := s.fetchDoc(ctx, pageURL); doc != nil {
				pages <- fetchedPage{url: pageURL, doc: doc}
			}
		}(u)
	}
	wg.Wait()
	close(pages)

	seen := make(map[string]bool)
	var out []feed.Candidate
	for page := range pages {
		for _, cand := range extract.CollectHeadlines(page.doc, page.url) {
			if seen[cand.URL] {
				continue
			}
			seen[cand.URL] = true
			out = append(out, cand)
		}
	}
	return out
}

// enrich fetches each candidate's article page and builds one Article per
// candidate in candidate order, regardless of fetch success.
func (s *Scraper) enrich(ctx context.Context, src feed.Source, candidates []feed.Candidate) []feed.Article {
	articles := make([]feed.Article, len(candidates))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.EnrichWorkers)
	for i, cand := range candidates {
		wg.Add(1)
		go func(idx int, cand feed.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			articles[idx] = s.buildArticle(ctx, src, cand)
		}(i, cand)
	}
	wg.Wait()
	return articles
}

func (s *Scraper) buildArticle(ctx context.Context, src feed.Source, cand feed.Candidate) feed.Article {
	doc := s.fetchDoc(ctx, cand.URL)
	if doc == nil {
		return headlineOnly(src, cand)
	}

	article := feed.Article{
		SourceKey: src.Key,
		Source:    src.Tamil,
		SourceEn:  src.English,
		Title:     cand.Title,
		URL:       cand.URL,
	}
	if ts, ok := extract.Timestamp(doc, cand.URL); ok {
		article.Timestamp = &ts
	}
	// Content first: it strips script/style/nav chrome, and the trending
	// probes are meant to run against the stripped page.
	article.Content = extract.Content(doc)
	article.TrendingScore = extract.TrendingScore(cand.Title, doc)
	return article
}

// fetchDoc retrieves and parses one page, returning nil on any failure.
func (s *Scraper) fetchDoc(ctx context.Context, url string) *goquery.Document {
	resp, err := s.fetcher.Fetch(ctx, url)
	metrics.ObservePageFetch(url, err == nil)
	if err != nil {
		s.logger.Debug("page fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		s.logger.Debug("page parse failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return doc
}

func headlineOnly(src feed.Source, cand feed.Candidate) feed.Article {
	return feed.Article{
		SourceKey: src.Key,
		Source:    src.Tamil,
		SourceEn:  src.English,
		Title:     cand.Title,
		URL:       cand.URL,
	}
}
