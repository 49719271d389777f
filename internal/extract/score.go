package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	engagementPoints    = 25
	trendingClassPoints = 120
	breakingTextPoints  = 100
)

// engagementWords mark high-engagement subject matter in a title. Scoring is
// additive per matching word with no cap.
var engagementWords = []string{
	"மரணம்", "கொலை", "விபத்து", "பரபர", "சம்பவம்", "அதிர்ச்சி",
	"வெளியானது", "தீர்ப்பு", "போராட்டம்", "தாக்குதல்", "கைது",
	"வழக்கு", "நடவடிக்கை", "எதிர்ப்பு", "பதற்றம்", "சிக்கல்",
	"குற்றச்சாட்டு", "முடிவு", "அறிவிப்பு", "வெற்றி", "தடக்கம்",
}

var (
	trendingClassRe = regexp.MustCompile(`(?i)trending|popular|featured|breaking|top-story`)
	breakingTextRe  = regexp.MustCompile(`(?i)breaking|முக்கியம்|விரைவு`)
)

// TrendingScore computes the prominence score for an article from its title
// and page markup. An article whose page was never fetched always scores 0,
// so a nil doc short-circuits before any title rule.
func TrendingScore(title string, doc *goquery.Document) int {
	if doc == nil {
		return 0
	}
	score := 0
	for _, w := range engagementWords {
		if strings.Contains(title, w) {
			score += engagementPoints
		}
	}
	if hasTrendingClass(doc) {
		score += trendingClassPoints
	}
	if breakingTextRe.MatchString(doc.Text()) {
		score += breakingTextPoints
	}
	return score
}

func hasTrendingClass(doc *goquery.Document) bool {
	found := false
	doc.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if trendingClassRe.MatchString(el.AttrOr("class", "")) {
			found = true
			return false
		}
		return true
	})
	return found
}
