package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraphLen = 25
	teaserPrefixLen = 80
	minBodyLen      = 50
	maxBodyWords    = 200
)

// chromeSelector matches structural elements stripped before any body search.
const chromeSelector = "script,style,nav,header,footer,iframe,aside,form,noscript"

var (
	contentClassRe = regexp.MustCompile(`(?i)article-body|story-body|post-content|news-body|` +
		`article-content|entry-content|article-text|` +
		`content-area|main-content|news-detail|StoryContent`)
	contentIDRe = regexp.MustCompile(`(?i)article|story|content|detail`)
)

// junkPhrases disqualify a paragraph regardless of length, in either language.
var junkPhrases = []string{
	"subscribe", "follow us", "share this", "advertisement", "login",
	"register", "copyright", "all rights", "also read",
	"சந்தா", "பகிரவும்", "விளம்பரம்", "இதையும் படியுங்கள்", "மேலும் படிக்க",
}

// Content extracts the article body from a fetched page. It returns an empty
// string when no plausible body is found; short-but-real snippets above 50
// characters are kept. The result is capped at 200 words.
func Content(doc *goquery.Document) string {
	doc.Find(chromeSelector).Remove()

	paras := bodyParagraphs(doc)
	seen := make(map[string]bool)
	var texts []string
	paras.Each(func(_ int, p *goquery.Selection) {
		t := strings.TrimSpace(p.Text())
		if utf8.RuneCountInString(t) < minParagraphLen {
			return
		}
		lower := strings.ToLower(t)
		for _, j := range junkPhrases {
			if strings.Contains(lower, j) {
				return
			}
		}
		// Repeated teaser blocks share a prefix even when trailing chrome
		// differs, so the dedup key is the first 80 characters only.
		prefix := runePrefix(t, teaserPrefixLen)
		if seen[prefix] {
			return
		}
		seen[prefix] = true
		texts = append(texts, t)
	})

	body := strings.Join(texts, "\n\n")
	if utf8.RuneCountInString(body) < minBodyLen {
		return ""
	}
	return truncateWords(body, maxBodyWords)
}

// bodyParagraphs picks the paragraph set via the container priority chain:
// semantic article element, known content-class block, known content-id block,
// then a whole-page paragraph scan.
func bodyParagraphs(doc *goquery.Document) *goquery.Selection {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article.Find("p,div")
	}
	if div := firstMatchingDiv(doc, "class", contentClassRe); div != nil {
		return div.Find("p,div")
	}
	if div := firstMatchingDiv(doc, "id", contentIDRe); div != nil {
		return div.Find("p,div")
	}
	return doc.Find("p")
}

func firstMatchingDiv(doc *goquery.Document, attr string, re *regexp.Regexp) *goquery.Selection {
	var match *goquery.Selection
	doc.Find("div[" + attr + "]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if re.MatchString(div.AttrOr(attr, "")) {
			match = div
			return false
		}
		return true
	})
	return match
}

func runePrefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ") + "…"
}
