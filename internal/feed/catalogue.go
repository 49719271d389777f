package feed

// catalogue lists every supported newspaper in ranking priority order. The
// first defaultSelectionSize entries are active when the user has saved no
// selection; the rest are available but off by default.
var catalogue = []Source{
	{
		Key:      "dinamalar",
		Tamil:    "தினமலர்",
		English:  "Dinamalar",
		URL:      "https://www.dinamalar.com/",
		Sections: []string{"https://www.dinamalar.com/news/"},
	},
	{
		Key:      "dailythanthi",
		Tamil:    "தினத்தந்தி",
		English:  "Daily Thanthi",
		URL:      "https://www.dailythanthi.com/",
		Sections: []string{"https://www.dailythanthi.com/tamil/"},
	},
	{
		Key:      "thehindu",
		Tamil:    "தி இந்து தமிழ்",
		English:  "The Hindu Tamil",
		URL:      "https://tamil.thehindu.com/",
		Sections: []string{"https://tamil.thehindu.com/latest/"},
	},
	{
		Key:      "bbc",
		Tamil:    "பிபிசி தமிழ்",
		English:  "BBC Tamil",
		URL:      "https://www.bbc.com/tamil",
		Sections: []string{"https://www.bbc.com/tamil/articles"},
	},
	{
		Key:      "anandha_vikatan",
		Tamil:    "ஆனந்த விகடன்",
		English:  "Anandha Vikatan",
		URL:      "https://www.vikatan.com/",
		Sections: []string{"https://www.vikatan.com/news/tamil/"},
	},
	{
		Key:      "kumudham",
		Tamil:    "குமுதம்",
		English:  "Kumudham",
		URL:      "https://www.kumudham.com/",
		Sections: []string{"https://www.kumudham.com/news/"},
	},
	{
		Key:      "dinamani",
		Tamil:    "தினமணி",
		English:  "Dinamani",
		URL:      "https://www.dinamani.com/",
		Sections: []string{"https://www.dinamani.com/latest-news/"},
	},
	{
		Key:     "kaalai_kadhir",
		Tamil:   "காலை கதிர்",
		English: "Kaalai Kadhir",
		URL:     "https://www.kaalaikadhir.com/",
	},
	{
		Key:      "dinakaran",
		Tamil:    "தினகரன்",
		English:  "Dinakaran",
		URL:      "https://www.dinakaran.com/",
		Sections: []string{"https://www.dinakaran.com/news/"},
	},
	{
		Key:     "maalaimurasu",
		Tamil:   "மாலை முரச்ச",
		English: "Maalai Murasu",
		URL:     "https://www.maalaimurasu.com/",
	},
	{
		Key:     "maalaimalar",
		Tamil:   "மாலைமலர்",
		English: "Maalai Malar",
		URL:     "https://www.maalaimalar.com/",
	},
	{
		Key:     "thinaboomi",
		Tamil:   "தினபூமி",
		English: "Thinaboomi",
		URL:     "https://www.thinaboomi.com/",
	},
	{
		Key:     "viduthalai",
		Tamil:   "விடுதலை",
		English: "Viduthalai",
		URL:     "https://www.viduthalai.in/",
	},
	{
		Key:     "dinasudar",
		Tamil:   "தினசுடர்",
		English: "Dinasudar",
		URL:     "https://www.dinasudar.com/",
	},
}

const defaultSelectionSize = 10

// Catalogue returns all supported sources in priority order.
func Catalogue() []Source {
	out := make([]Source, len(catalogue))
	copy(out, catalogue)
	return out
}

// DefaultSelection returns the keys active when no selection has been saved.
func DefaultSelection() []string {
	keys := make([]string, 0, defaultSelectionSize)
	for _, src := range catalogue[:defaultSelectionSize] {
		keys = append(keys, src.Key)
	}
	return keys
}

// KnownKey reports whether key names a catalogued source.
func KnownKey(key string) bool {
	for _, src := range catalogue {
		if src.Key == key {
			return true
		}
	}
	return false
}

// SelectSources maps a set of keys to sources, preserving catalogue priority
// order regardless of the order keys were supplied in. Unknown keys are
// dropped; an empty result falls back to the default selection.
func SelectSources(keys []string) []Source {
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	var out []Source
	for _, src := range catalogue {
		if want[src.Key] {
			out = append(out, src)
		}
	}
	if len(out) == 0 {
		return SelectSources(DefaultSelection())
	}
	return out
}
