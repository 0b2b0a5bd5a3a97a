package parser

// CategoryCertainty classifies a category suggestion.
type CategoryCertainty int

const (
	CategoryNone CategoryCertainty = iota
	CategoryGuessed
	CategoryFirm
)

func (c CategoryCertainty) String() string {
	switch c {
	case CategoryFirm:
		return "firm"
	case CategoryGuessed:
		return "guessed"
	default:
		return "none"
	}
}

// CertaintyOf maps a suggester confidence onto firm, guessed or none.
func CertaintyOf(confidence float64) CategoryCertainty {
	switch {
	case confidence >= FirmCategoryThreshold:
		return CategoryFirm
	case confidence > 0:
		return CategoryGuessed
	default:
		return CategoryNone
	}
}

// Outcome captures how each field was obtained. Scoring depends on nothing else.
type Outcome struct {
	AmountFound   bool
	DateExplicit  bool
	MerchantFound bool
	Category      CategoryCertainty
}

type scoringRule struct {
	when    func(Outcome) bool
	weight  float64
	warning string
}

// Rules are evaluated in order; warnings come out in the same order.
var scoringRules = []scoringRule{
	{when: func(o Outcome) bool { return o.AmountFound }, weight: 0.40},
	{when: func(o Outcome) bool { return !o.AmountFound }, warning: WarnAmountNotFound},
	{when: func(o Outcome) bool { return o.DateExplicit }, weight: 0.15},
	{when: func(o Outcome) bool { return !o.DateExplicit }, warning: WarnDateAssumed},
	{when: func(o Outcome) bool { return o.MerchantFound }, weight: 0.20},
	{when: func(o Outcome) bool { return o.Category == CategoryFirm }, weight: 0.25},
	{when: func(o Outcome) bool { return o.Category == CategoryGuessed }, weight: 0.10, warning: WarnCategoryGuessed},
	{when: func(o Outcome) bool { return o.Category == CategoryNone }, warning: WarnCategoryNotDetected},
}

// Score sums the weights of the rules that apply, clamped to [0,1], and collects their
// warnings.
func Score(o Outcome) (float64, []string) {
	total := 0.0
	warnings := make([]string, 0, 3)
	for _, rule := range scoringRules {
		if !rule.when(o) {
			continue
		}
		total += rule.weight
		if rule.warning != "" {
			warnings = append(warnings, rule.warning)
		}
	}

	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	return round2(total), warnings
}
