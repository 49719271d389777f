// Package aggregate merges all selected sources' articles into one ranked
// snapshot: cross-source fan-out, URL and near-duplicate-title dedup,
// priority-preserving grouping, and within-group trending ranking.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/clock/system"
	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/progress"
)

const (
	defaultSourceWorkers = 5
	titleFingerprintLen  = 55
)

// Aggregator runs the cross-source pipeline phase.
type Aggregator struct {
	scraper feed.SourceScraper
	workers int
	clock   feed.Clock
	logger  *zap.Logger
	tracker *progress.Tracker
}

// New constructs an Aggregator. workers caps concurrent sources.
func New(scraper feed.SourceScraper, workers int, clock feed.Clock, logger *zap.Logger, tracker *progress.Tracker) *Aggregator {
	if workers <= 0 {
		workers = defaultSourceWorkers
	}
	if clock == nil {
		clock = system.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		scraper: scraper,
		workers: workers,
		clock:   clock,
		logger:  logger,
		tracker: tracker,
	}
}

// Run scrapes every source concurrently and assembles the ranked snapshot.
// A source that panics contributes zero articles; it never aborts the cycle.
func (a *Aggregator) Run(ctx context.Context, sources []feed.Source) feed.Snapshot {
	start := a.clock.Now()
	a.tracker.Emit(progress.Event{Stage: progress.StageCycleStart})

	raw := a.scrapeAll(ctx, sources)
	deduped := dedupeByURL(raw)
	deduped = dedupeByTitle(deduped)
	ordered := rank(deduped, sources)

	trending := 0
	for i := range ordered {
		ordered[i].Number = i + 1
		ordered[i].IsTrending = ordered[i].TrendingScore > 0
		if ordered[i].IsTrending {
			trending++
		}
	}

	elapsed := a.clock.Now().Sub(start)
	a.logger.Info("cycle assembled",
		zap.Int("articles", len(ordered)),
		zap.Int("trending", trending),
		zap.Int("sources", len(sources)),
		zap.Duration("elapsed", elapsed),
	)
	return feed.Snapshot{
		Articles:      ordered,
		StartedAt:     start,
		ElapsedMs:     elapsed.Milliseconds(),
		TotalCount:    len(ordered),
		TrendingCount: trending,
		SourceCount:   len(sources),
	}
}

// scrapeAll fans out over sources with a bounded pool. Completion order is
// irrelevant: rank imposes the final deterministic ordering.
func (a *Aggregator) scrapeAll(ctx context.Context, sources []feed.Source) []feed.Article {
	results := make([][]feed.Article, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.workers)
	for i, src := range sources {
		wg.Add(1)
		go func(idx int, src feed.Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("source scrape panicked",
						zap.String("source", src.Key),
						zap.String("panic", fmt.Sprint(r)),
					)
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = a.scraper.ScrapeSource(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var all []feed.Article
	for _, batch := range results {
		all = append(all, batch...)
	}
	return all
}

func dedupeByURL(articles []feed.Article) []feed.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0:0]
	for _, a := range articles {
		if seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		out = append(out, a)
	}
	return out
}

// dedupeByTitle drops near-duplicates of the same story picked up from
// different listing pages, keyed by a normalized 55-character title prefix.
func dedupeByTitle(articles []feed.Article) []feed.Article {
	seen := make(map[string]bool, len(articles))
	out := articles[:0:0]
	for _, a := range articles {
		fp := TitleFingerprint(a.Title)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, a)
	}
	return out
}

// TitleFingerprint normalizes a title (lowercase, collapsed whitespace) and
// truncates it to the fingerprint length.
func TitleFingerprint(title string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	runes := []rune(norm)
	if len(runes) > titleFingerprintLen {
		runes = runes[:titleFingerprintLen]
	}
	return string(runes)
}

// rank partitions articles by source in catalogue priority order, then sorts
// each partition trending-first (score desc, timestamp desc) followed by the
// rest in reverse-chronological order. Missing timestamps sort as earliest.
func rank(articles []feed.Article, sources []feed.Source) []feed.Article {
	groups := make(map[string][]feed.Article, len(sources))
	for _, a := range articles {
		groups[a.SourceKey] = append(groups[a.SourceKey], a)
	}

	var ordered []feed.Article
	for _, src := range sources {
		group := groups[src.Key]
		var trending, regular []feed.Article
		for _, a := range group {
			if a.TrendingScore > 0 {
				trending = append(trending, a)
			} else {
				regular = append(regular, a)
			}
		}
		sort.SliceStable(trending, func(i, j int) bool {
			if trending[i].TrendingScore != trending[j].TrendingScore {
				return trending[i].TrendingScore > trending[j].TrendingScore
			}
			return articleTime(trending[i]) > articleTime(trending[j])
		})
		sort.SliceStable(regular, func(i, j int) bool {
			return articleTime(regular[i]) > articleTime(regular[j])
		})
		ordered = append(ordered, trending...)
		ordered = append(ordered, regular...)
	}
	return ordered
}

func articleTime(a feed.Article) int64 {
	if a.Timestamp == nil {
		return 0
	}
	return a.Timestamp.Unix()
}
