package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

var (
	timeClassRe = regexp.MustCompile(`(?i)time|date|publish|posted|ago`)
	urlDateRe   = regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`)
)

// Timestamp attempts to resolve the publish time of an article page, trying
// strategies in priority order: structured page metadata, a machine-readable
// time element, free text in date-ish class names, then a date embedded in
// the URL path. A miss is not an error; ok is simply false.
func Timestamp(doc *goquery.Document, pageURL string) (ts time.Time, ok bool) {
	if content, exists := doc.Find(`meta[property="article:published_time"]`).Attr("content"); exists {
		if ts, ok = parseCandidate(content); ok {
			return ts, true
		}
	}
	if datetime, exists := doc.Find("time[datetime]").First().Attr("datetime"); exists {
		if ts, ok = parseCandidate(datetime); ok {
			return ts, true
		}
	}
	if ts, ok = timestampFromClassText(doc); ok {
		return ts, true
	}
	return timestampFromURL(pageURL)
}

func timestampFromClassText(doc *goquery.Document) (ts time.Time, ok bool) {
	doc.Find("span[class],div[class],p[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if !timeClassRe.MatchString(el.AttrOr("class", "")) {
			return true
		}
		txt := strings.TrimSpace(el.Text())
		if txt == "" {
			return true
		}
		if parsed, err := dateparse.ParseAny(txt); err == nil {
			ts, ok = parsed, true
			return false
		}
		return true
	})
	return ts, ok
}

func timestampFromURL(pageURL string) (time.Time, bool) {
	m := urlDateRe.FindStringSubmatch(pageURL)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// parseCandidate tries the strict ISO-like parser first and falls back to the
// fuzzy natural-language parser.
func parseCandidate(s string) (time.Time, bool) {
	if ts, ok := parseISO(s); ok {
		return ts, true
	}
	if ts, err := dateparse.ParseAny(s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// parseISO accepts year-month-day with optional time-of-day and optional
// fractional seconds. Any timezone suffix is discarded rather than applied;
// source sites mix offsets freely and a date-level ordering is all the feed
// needs.
func parseISO(s string) (time.Time, bool) {
	s = strings.SplitN(s, "+", 2)[0]
	s = strings.SplitN(s, "Z", 2)[0]

	datePart := s
	timePart := "00:00:00"
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		datePart = s[:i]
		if rest := s[i+1:]; rest != "" {
			timePart = rest
		}
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(dateFields[0])
	month, err2 := strconv.Atoi(dateFields[1])
	day, err3 := strconv.Atoi(dateFields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	var hour, minute, sec int
	timeFields := strings.Split(timePart, ":")
	if len(timeFields) > 0 {
		hour, _ = strconv.Atoi(timeFields[0])
	}
	if len(timeFields) > 1 {
		minute, _ = strconv.Atoi(timeFields[1])
	}
	if len(timeFields) > 2 {
		if f, err := strconv.ParseFloat(timeFields[2], 64); err == nil {
			sec = int(f)
		}
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC), true
}
