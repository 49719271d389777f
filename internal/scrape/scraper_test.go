package scrape

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
)

const headline1 = "போராட்டம் தொடர்பாக போலீசார் நடவடிக்கை"
const headline2 = "அமைச்சர் அறிவிப்பு குறித்து பெரும் எதிர்ப்பு"

// fakeFetcher serves canned bodies by URL and records the request count.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (feed.FetchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	f.mu.Unlock()
	if !ok {
		return feed.FetchResponse{}, fmt.Errorf("fetch %s: status 404", url)
	}
	return feed.FetchResponse{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) fetchCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

func listingHTML(links map[string]string) string {
	html := "<html><body>"
	for href, text := range links {
		html += `<a href="` + href + `">` + text + `</a>`
	}
	return html + "</body></html>"
}

func articleHTML(body string) string {
	return `<html><body><article>
		<p>` + body + ` இந்த செய்தி குறித்த விரிவான தகவல்கள் இங்கே தொடர்கின்றன.</p>
		<p>மேலும் பல விவரங்கள் சம்பந்தப்பட்ட அதிகாரிகள் மூலம் உறுதி செய்யப்பட்டுள்ளன.</p>
	</article></body></html>`
}

func testSource() feed.Source {
	return feed.Source{
		Key:      "dinamalar",
		Tamil:    "தினமலர்",
		English:  "Dinamalar",
		URL:      "https://paper.example",
		Sections: []string{"https://paper.example/news/"},
	}
}

func TestScrapeSourceEnrichesHeadlines(t *testing.T) {
	t.Parallel()
	metrics.Init()

	src := testSource()
	fetcher := &fakeFetcher{pages: map[string]string{
		src.URL: listingHTML(map[string]string{
			"/news/1": headline1,
		}),
		"https://paper.example/news/": listingHTML(map[string]string{
			"/news/2": headline2,
		}),
		"https://paper.example/news/1": articleHTML("முதல் கட்டுரை உடல்."),
		"https://paper.example/news/2": articleHTML("இரண்டாம் கட்டுரை உடல்."),
	}}

	s := New(fetcher, Config{}, nil, nil)
	articles := s.ScrapeSource(context.Background(), src)

	require.Len(t, articles, 2)
	byURL := make(map[string]feed.Article)
	for _, a := range articles {
		byURL[a.URL] = a
		require.Equal(t, "dinamalar", a.SourceKey)
		require.Equal(t, "தினமலர்", a.Source)
		require.Equal(t, "Dinamalar", a.SourceEn)
	}
	require.NotEmpty(t, byURL["https://paper.example/news/1"].Content)
	require.NotEmpty(t, byURL["https://paper.example/news/2"].Content)
}

func TestScrapeSourceFailedArticleFetchDegradesToHeadlineOnly(t *testing.T) {
	t.Parallel()
	metrics.Init()

	src := testSource()
	src.Sections = nil
	fetcher := &fakeFetcher{pages: map[string]string{
		src.URL: listingHTML(map[string]string{
			"/news/1": headline1,
		}),
		// /news/1 itself is absent, so enrichment fails.
	}}

	s := New(fetcher, Config{}, nil, nil)
	articles := s.ScrapeSource(context.Background(), src)

	require.Len(t, articles, 1)
	a := articles[0]
	require.Equal(t, headline1, a.Title)
	require.Empty(t, a.Content)
	require.Nil(t, a.Timestamp)
	require.Zero(t, a.TrendingScore)
}

func TestScrapeSourceDeadListingsYieldNil(t *testing.T) {
	t.Parallel()
	metrics.Init()

	src := testSource()
	fetcher := &fakeFetcher{pages: map[string]string{}}

	s := New(fetcher, Config{}, nil, nil)
	require.Nil(t, s.ScrapeSource(context.Background(), src))
}

func TestScrapeSourceCutoffLimitsEnrichment(t *testing.T) {
	t.Parallel()
	metrics.Init()

	src := testSource()
	src.Sections = nil
	links := make(map[string]string, 5)
	pages := map[string]string{}
	for i := 0; i < 5; i++ {
		href := fmt.Sprintf("/news/%d", i)
		links[href] = fmt.Sprintf("%s எண் %d", headline1, i)
		pages["https://paper.example"+href] = articleHTML("கட்டுரை உடல் இங்கே உள்ளது.")
	}
	fetcher := &fakeFetcher{pages: pages}
	fetcher.pages[src.URL] = listingHTML(links)

	s := New(fetcher, Config{EnrichCutoff: 2}, nil, nil)
	articles := s.ScrapeSource(context.Background(), src)

	require.Len(t, articles, 5)
	enriched := 0
	for _, a := range articles {
		if a.Content != "" {
			enriched++
		}
	}
	require.Equal(t, 2, enriched, "only the cutoff prefix gets a second-pass fetch")

	// The listing was fetched once, plus exactly cutoff article pages.
	require.Equal(t, 1, fetcher.fetchCount(src.URL))
	total := 0
	fetcher.mu.Lock()
	total = len(fetcher.calls)
	fetcher.mu.Unlock()
	require.Equal(t, 3, total)
}

func TestScrapeSourceDeduplicatesAcrossListings(t *testing.T) {
	t.Parallel()
	metrics.Init()

	src := testSource()
	shared := listingHTML(map[string]string{"/news/1": headline1})
	fetcher := &fakeFetcher{pages: map[string]string{
		src.URL:                        shared,
		"https://paper.example/news/":  shared,
		"https://paper.example/news/1": articleHTML("ஒரே கட்டுரை உடல்."),
	}}

	s := New(fetcher, Config{}, nil, nil)
	articles := s.ScrapeSource(context.Background(), src)

	require.Len(t, articles, 1)
	require.Equal(t, 1, fetcher.fetchCount("https://paper.example/news/1"))
}
