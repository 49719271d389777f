// Package extract implements the source-agnostic page heuristics: headline
// classification, article body extraction, publish-timestamp resolution, and
// trending scoring. All pattern and keyword lists are data tables so new
// sources or languages extend the tables, not the control flow.
package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/senthilkr/tamil-news-feed/internal/feed"
)

const (
	minHeadlineLen  = 18
	maxHeadlineLen  = 400
	minTamilRunes   = 3
	tamilBlockStart = 0x0B80
	tamilBlockEnd   = 0x0BFF
)

// navWords flag navigation and boilerplate link text, matched
// case-insensitively as substrings.
var navWords = []string{
	"home", "menu", "login", "search", "epaper", "e-paper", "signin",
	"register", "signup", "subscribe", "contact us", "about us",
	"terms", "privacy", "cookie", "advertisement", "sponsor",
	"careers", "help", "faq", "sitemap",
	"அறிமுகம்", "தொடர்பு", "சந்தா", "கிட்ட மேலும்",
}

// genericSkip flags section labels and roundup pages that read like headlines
// but never link to a single article.
var genericSkip = []string{
	"ஒரு பார்வை", "சிறப்புக் கட்டுரைகள்", "சிறப்பு கட்டுரை",
	"தலையங்கம்", "செய்தித் தொகுப்பு", "தொகுப்பு",
	"புகைப்படங்கள்", "வீடியோ", "சூழல்", "பின்னணி", "விளக்கம்",
	"editorial", "opinion", "compilation", "overview",
	"gallery", "video", "background",
}

// year-in-review pages ("2023 ... பார்வை") are listings, not articles.
var retrospectiveRe = regexp.MustCompile(`20\d{2}.*பார்வை`)

// LooksLikeHeadline classifies link text as a genuine article headline. It is
// a pure function of its inputs.
func LooksLikeHeadline(text, href string) bool {
	if text == "" || href == "" {
		return false
	}
	n := utf8.RuneCountInString(text)
	if n < minHeadlineLen || n > maxHeadlineLen {
		return false
	}
	if countTamilRunes(text) < minTamilRunes {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range navWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, g := range genericSkip {
		if strings.Contains(lower, strings.ToLower(g)) {
			return false
		}
	}
	return !retrospectiveRe.MatchString(text)
}

func countTamilRunes(text string) int {
	n := 0
	for _, r := range text {
		if r >= tamilBlockStart && r <= tamilBlockEnd {
			n++
		}
	}
	return n
}

// CollectHeadlines scans every outbound link on a listing page, resolves
// relative hrefs against baseURL, and returns the candidates that classify as
// headlines, deduplicated by URL in document order of first occurrence.
func CollectHeadlines(doc *goquery.Document, baseURL string) []feed.Candidate {
	seen := make(map[string]bool)
	var out []feed.Candidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		title := strings.Join(strings.Fields(a.Text()), " ")
		if !LooksLikeHeadline(title, href) {
			return
		}
		full := AbsoluteURL(baseURL, href)
		if seen[full] {
			return
		}
		seen[full] = true
		out = append(out, feed.Candidate{Title: title, URL: full})
	})
	return out
}

// AbsoluteURL resolves href against base, normalizing scheme-relative and
// path-relative forms onto the base's scheme and host.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	b, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || b.Host == "" {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return b.Scheme + "://" + b.Host + href
	}
	return b.Scheme + "://" + b.Host + "/" + href
}
