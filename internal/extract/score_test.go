package extract

import "testing"

func TestTrendingScoreUnfetchedPageIsZero(t *testing.T) {
	t.Parallel()

	if got := TrendingScore("போராட்டம் கைது மரணம்", nil); got != 0 {
		t.Fatalf("expected 0 for nil doc, got %d", got)
	}
}

func TestTrendingScoreAddsPerEngagementWord(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><p>ordinary page text</p></body></html>`)

	if got := TrendingScore("அமைச்சர் இன்று பேசினார்", doc); got != 0 {
		t.Fatalf("expected 0 for neutral title, got %d", got)
	}
	if got := TrendingScore("போராட்டம் குறித்து அறிவிப்பு", doc); got != 2*engagementPoints {
		t.Fatalf("expected %d for two engagement words, got %d", 2*engagementPoints, got)
	}
	if got := TrendingScore("போராட்டம் கைது மரணம் விபத்து", doc); got != 4*engagementPoints {
		t.Fatalf("uncapped additive scoring expected %d, got %d", 4*engagementPoints, got)
	}
}

func TestTrendingScoreMarkupSignals(t *testing.T) {
	t.Parallel()

	withClass := mustDoc(t, `<html><body><div class="trending-now"><p>x</p></div></body></html>`)
	if got := TrendingScore("சாதாரண தலைப்பு இங்கே", withClass); got != trendingClassPoints {
		t.Fatalf("expected %d for trending class, got %d", trendingClassPoints, got)
	}

	withText := mustDoc(t, `<html><body><p>முக்கியம்: அவசர அறிவிப்பு</p></body></html>`)
	if got := TrendingScore("சாதாரண தலைப்பு இங்கே", withText); got != breakingTextPoints {
		t.Fatalf("expected %d for breaking text, got %d", breakingTextPoints, got)
	}

	both := mustDoc(t, `<html><body><div class="breaking-news"><p>முக்கியம் செய்தி</p></div></body></html>`)
	want := trendingClassPoints + breakingTextPoints
	if got := TrendingScore("சாதாரண தலைப்பு இங்கே", both); got != want {
		t.Fatalf("expected combined %d, got %d", want, got)
	}
}
