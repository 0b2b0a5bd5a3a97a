package parser

import (
	"sort"
	"strings"
	"time"
)

// MerchantCategory maps a lowercase merchant identifier to its category.
type MerchantCategory struct {
	Merchant string
	Category string
}

// CategoryKeywords lists trigger substrings for a category.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// KnowledgeBase holds the read-only tables the parser consults.
// Tables are ordered: the first entry that matches wins. A KnowledgeBase must not be
// modified once it has been handed to a Parser.
type KnowledgeBase struct {
	MerchantCategories []MerchantCategory
	CategoryKeywords   []CategoryKeywords
	KnownBrands        []string
	FillerWords        []string
	Months             map[string]time.Month
}

// Categories returns the category names known to the keyword table, in table order.
func (kb *KnowledgeBase) Categories() []string {
	names := make([]string, 0, len(kb.CategoryKeywords))
	for _, ck := range kb.CategoryKeywords {
		names = append(names, ck.Category)
	}
	return names
}

// monthNames returns month keys longest first so alternations are stable.
func (kb *KnowledgeBase) monthNames() []string {
	names := make([]string, 0, len(kb.Months))
	for name := range kb.Months {
		names = append(names, strings.ToLower(name))
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

func (kb *KnowledgeBase) fillerSet() map[string]struct{} {
	set := make(map[string]struct{}, len(kb.FillerWords))
	for _, w := range kb.FillerWords {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

var defaultKnowledgeBase = &KnowledgeBase{
	MerchantCategories: []MerchantCategory{
		// Transport
		{"grab", "transport"},
		{"shell", "transport"},
		{"petronas", "transport"},
		{"caltex", "transport"},
		{"tng", "transport"},
		{"touch n go", "transport"},

		// Food
		{"mcd", "food"},
		{"mcdonalds", "food"},
		{"kfc", "food"},
		{"starbucks", "food"},
		{"zus", "food"},
		{"zus coffee", "food"},
		{"familymart", "food"},
		{"7eleven", "food"},
		{"7-eleven", "food"},
		{"oldtown", "food"},
		{"tealive", "food"},
		{"gongcha", "food"},

		// Shopping
		{"shopee", "shopping"},
		{"lazada", "shopping"},
		{"zalora", "shopping"},
		{"uniqlo", "shopping"},
		{"mr diy", "shopping"},
		{"ikea", "shopping"},
		{"aeon", "shopping"},

		// Subscriptions
		{"netflix", "subscriptions"},
		{"spotify", "subscriptions"},
		{"youtube", "subscriptions"},
		{"disney", "subscriptions"},

		// Utilities
		{"tnb", "utilities"},
		{"unifi", "utilities"},
		{"maxis", "utilities"},
		{"digi", "utilities"},
		{"celcom", "utilities"},
		{"astro", "utilities"},
	},

	CategoryKeywords: []CategoryKeywords{
		{"food", []string{
			// Malaysian food
			"nasi", "teh", "kopi", "makan", "minum", "mamak", "kopitiam",
			"roti", "nasi lemak", "nasi kandar", "char kuey teow", "laksa",
			"satay", "rendang", "ayam", "ikan", "goreng", "sup", "mi",
			// Meal types
			"lunch", "dinner", "breakfast", "supper", "brunch", "snack",
			// Chains
			"mcd", "mcdonalds", "kfc", "burger king", "pizza hut", "dominos",
			"subway", "starbucks", "zus", "zus coffee", "familymart", "7eleven",
			"oldtown", "secret recipe", "sushi king", "kenny rogers",
			"texas chicken", "nandos", "tealive", "gongcha", "boba",
		}},
		{"transport", []string{
			// Ride-hailing
			"grab", "grabcar", "grabfood", "indriver", "maxim",
			// Fuel
			"petrol", "diesel", "fuel", "minyak", "shell", "petronas", "caltex", "bp",
			// Parking and tolls
			"parking", "toll", "parkson", "tng", "touch n go", "smarttag",
			// Public transport
			"lrt", "mrt", "ktm", "bus", "rapidkl", "prasarana", "erl",
			// Vehicle
			"car wash", "cuci kereta", "service", "tayar", "tyre",
		}},
		{"shopping", []string{
			// E-commerce
			"shopee", "lazada", "zalora", "carousell",
			// Retail
			"uniqlo", "h&m", "zara", "cotton on", "padini", "vincci",
			"mr diy", "mr. diy", "ace hardware", "ikea", "harvey norman",
			"courts", "senheng", "aeon", "mydin", "tesco", "giant", "jaya grocer",
			// General
			"beli", "shopping", "belanja", "mall",
		}},
		{"subscriptions", []string{
			"netflix", "spotify", "youtube", "youtube premium", "disney",
			"disney+", "hbo", "hbo max", "apple music", "amazon prime",
			"chatgpt", "openai", "notion", "figma", "canva", "adobe",
			"microsoft 365", "google one", "icloud", "dropbox",
			"gym", "fitness first", "celebrity fitness", "anytime fitness",
		}},
		{"utilities", []string{
			"tnb", "tenaga", "electric", "elektrik", "syabas", "air", "water",
			"wifi", "internet", "unifi", "maxis", "digi", "celcom", "yes4g",
			"astro", "time", "streamyx", "broadband",
			"indah water", "sampah", "cukai", "assessment", "dbkl",
		}},
		{"entertainment", []string{
			"cinema", "wayang", "movie", "filem", "gsc", "tgv", "mbo", "mmcineplexes",
			"arcade", "bowling", "karaoke", "zoo", "aquaria", "theme park",
			"legoland", "sunway lagoon", "genting", "concert", "ticket", "tiket",
		}},
		{"healthcare", []string{
			"doctor", "doktor", "clinic", "klinik", "hospital", "pharmacy", "farmasi",
			"guardian", "watsons", "caring", "medicine", "ubat", "vitamin",
			"dental", "dentist", "gigi", "checkup", "medical",
		}},
		{"education", []string{
			"tuition", "class", "kelas", "book", "buku", "stationery", "alat tulis",
			"popular", "mph", "kinokuniya", "school", "sekolah", "university",
			"course", "kursus", "exam", "peperiksaan",
		}},
	},

	// Longer names sit before their prefixes (mcdonalds before mcd).
	KnownBrands: []string{
		"grab", "shell", "petronas", "shopee", "lazada", "netflix", "spotify",
		"starbucks", "zus", "familymart", "kfc", "mcdonalds", "mcd", "tealive",
		"gongcha", "uniqlo", "ikea", "aeon", "tesco", "giant", "jaya grocer",
	},

	FillerWords: []string{
		"spent", "spend", "pay", "paid", "beli", "bayar",
		"on", "untuk", "for", "bought", "purchase",
		"just", "only", "about", "around", "roughly",
		"i", "my", "me", "the", "a", "an",
	},

	Months: map[string]time.Month{
		"jan": time.January, "january": time.January, "januari": time.January,
		"feb": time.February, "february": time.February, "februari": time.February,
		"mar": time.March, "march": time.March, "mac": time.March,
		"apr": time.April, "april": time.April,
		"may": time.May, "mei": time.May,
		"jun": time.June, "june": time.June,
		"jul": time.July, "july": time.July, "julai": time.July,
		"aug": time.August, "august": time.August, "ogos": time.August,
		"sep": time.September, "sept": time.September, "september": time.September,
		"oct": time.October, "october": time.October, "oktober": time.October,
		"nov": time.November, "november": time.November,
		"dec": time.December, "december": time.December, "disember": time.December,
	},
}

// DefaultKnowledgeBase returns the built-in Malaysian knowledge base.
// The returned value is shared; treat it as read-only.
func DefaultKnowledgeBase() *KnowledgeBase {
	return defaultKnowledgeBase
}
