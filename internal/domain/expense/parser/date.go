package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	todayPattern     = regexp.MustCompile(`(?i)\btoday\b|\bhari ini\b`)
	yesterdayPattern = regexp.MustCompile(`(?i)\byesterday\b|\bsemalam\b`)
	// Day first, then month (Malaysian convention), optional 2 or 4 digit year.
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
)

// dateMatcher reports a resolved date and the residual text when it recognises one.
type dateMatcher func(text string, now time.Time) (DateResult, string, bool)

func (p *Parser) buildDateMatchers() []dateMatcher {
	return []dateMatcher{
		matchToday,
		matchYesterday,
		matchNumericDate,
		p.matchNamedMonth,
	}
}

// ResolveDate finds the expense date in text using the default knowledge base.
func ResolveDate(text string, now time.Time) (DateResult, string) {
	return defaultParser.ResolveDate(text, now)
}

// ResolveDate finds the expense date in text. When nothing matches the date defaults to now
// and Explicit is false.
func (p *Parser) ResolveDate(text string, now time.Time) (DateResult, string) {
	for _, match := range p.dateMatchers {
		if res, residual, ok := match(text, now); ok {
			return res, residual
		}
	}
	return DateResult{Date: now, Explicit: false}, text
}

func matchToday(text string, now time.Time) (DateResult, string, bool) {
	if !todayPattern.MatchString(text) {
		return DateResult{}, "", false
	}
	residual := collapseSpaces(todayPattern.ReplaceAllString(text, " "))
	return DateResult{Date: now, Explicit: true}, residual, true
}

func matchYesterday(text string, now time.Time) (DateResult, string, bool) {
	if !yesterdayPattern.MatchString(text) {
		return DateResult{}, "", false
	}
	residual := collapseSpaces(yesterdayPattern.ReplaceAllString(text, " "))
	return DateResult{Date: now.AddDate(0, 0, -1), Explicit: true}, residual, true
}

// matchNumericDate accepts D/M, D-M and D/M/Y forms. Day and month are only range checked,
// so 31/02 is accepted and rolls over the way time.Date does. Dates after today are
// rejected.
func matchNumericDate(text string, now time.Time) (DateResult, string, bool) {
	loc := numericDatePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return DateResult{}, "", false
	}

	day, _ := strconv.Atoi(text[loc[2]:loc[3]])
	month, _ := strconv.Atoi(text[loc[4]:loc[5]])
	year := now.Year()
	if loc[6] >= 0 {
		year, _ = strconv.Atoi(text[loc[6]:loc[7]])
		if year < 100 {
			year += 2000
		}
	}

	if day < 1 || day > 31 || month < 1 || month > 12 {
		return DateResult{}, "", false
	}
	if midnightOf(year, time.Month(month), day, now.Location()).After(midnight(now)) {
		return DateResult{}, "", false
	}

	date := atTimeOfDay(year, time.Month(month), day, now)
	return DateResult{Date: date, Explicit: true}, cutRange(text, loc[0], loc[1]), true
}

// matchNamedMonth accepts "12 jan", "5 december", "3 ogos". A date that would land in the
// future is moved to the previous year.
func (p *Parser) matchNamedMonth(text string, now time.Time) (DateResult, string, bool) {
	if p.namedMonthPattern == nil {
		return DateResult{}, "", false
	}
	loc := p.namedMonthPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return DateResult{}, "", false
	}

	day, _ := strconv.Atoi(text[loc[2]:loc[3]])
	month, ok := p.kb.Months[strings.ToLower(text[loc[4]:loc[5]])]
	if !ok || day < 1 || day > 31 {
		return DateResult{}, "", false
	}

	year := now.Year()
	if midnightOf(year, month, day, now.Location()).After(midnight(now)) {
		year--
	}

	date := atTimeOfDay(year, month, day, now)
	return DateResult{Date: date, Explicit: true}, cutRange(text, loc[0], loc[1]), true
}

func buildNamedMonthPattern(kb *KnowledgeBase) *regexp.Regexp {
	names := kb.monthNames()
	if len(names) == 0 {
		return nil
	}
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + strings.Join(names, "|") + `)\b`)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func midnightOf(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// atTimeOfDay places the calendar day at now's wall-clock time, to the second.
func atTimeOfDay(year int, month time.Month, day int, now time.Time) time.Time {
	return time.Date(year, month, day, now.Hour(), now.Minute(), now.Second(), 0, now.Location())
}
