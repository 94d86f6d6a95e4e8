package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultWindowDays is the trailing window used when a prompt names no dates.
const DefaultWindowDays = 30

// DateRange is an inclusive pair of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October,
	"noviembre": time.November, "diciembre": time.December,
}

const (
	dateLiteral = `\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`
	monthNames  = `enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre`
)

var (
	explicitRangePattern = regexp.MustCompile(`\b(?:del|desde|entre)\s+(` + dateLiteral + `)\s+(?:al|hasta|y|a)\s+(` + dateLiteral + `)`)
	literalPattern       = regexp.MustCompile(`\b(?:` + dateLiteral + `)\b`)
	isoLiteral           = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dayFirstLiteral      = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)

	trailingPattern    = regexp.MustCompile(`\bultim[oa]s\s+(\d{1,4})\s+(dias?|semanas?|meses|mes|anos?|anios?)\b`)
	namedMonthPattern  = regexp.MustCompile(`\bmes\s+de\s+(` + monthNames + `)(?:\s+(?:de\s+|del\s+)?(\d{4}))?\b`)
	bareMonthPattern   = regexp.MustCompile(`\b(?:en|de|durante)\s+(` + monthNames + `)(?:\s+(?:de\s+|del\s+)?(\d{4}))?\b`)
	previousMonthWords = regexp.MustCompile(`\b(?:mes\s+pasado|ultimo\s+mes|mes\s+anterior)\b`)
	currentMonthWords  = regexp.MustCompile(`\b(?:este|el\s+presente)\s+mes\b`)
	currentWeekWords   = regexp.MustCompile(`\besta\s+semana\b`)
	previousWeekWords  = regexp.MustCompile(`\b(?:semana\s+pasada|ultima\s+semana)\b`)
	currentYearWords   = regexp.MustCompile(`\beste\s+(?:ano|anio)\b`)
	previousYearWords  = regexp.MustCompile(`\b(?:ano|anio)\s+pasado\b`)
	todayWord          = regexp.MustCompile(`\bhoy\b`)
	yesterdayWord      = regexp.MustCompile(`\bayer\b`)
)

// DateResolver extracts calendar ranges from prompts relative to a clock.
type DateResolver struct {
	clock clockwork.Clock
	loc   *time.Location
}

func NewDateResolver(clock clockwork.Clock, loc *time.Location) *DateResolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DateResolver{clock: clock, loc: loc}
}

// Today is the current calendar day in the resolver's location.
func (r *DateResolver) Today() Date {
	return DateOf(r.clock.Now().In(r.loc))
}

// Location is the zone used to anchor calendar days.
func (r *DateResolver) Location() *time.Location {
	return r.loc
}

// TrailingWindow returns the days-long window ending today.
func (r *DateResolver) TrailingWindow(days int) DateRange {
	if days <= 0 {
		days = DefaultWindowDays
	}
	today := r.Today()
	return DateRange{Start: today.AddDays(-(days - 1)), End: today}
}

// Resolve finds the first date anchor in text. Explicit literal ranges win
// over relative phrases. ok is false when the text names no dates; a
// malformed literal is an INVALID_DATE input error.
func (r *DateResolver) Resolve(text string) (DateRange, bool, error) {
	t := Normalize(text)

	if rng, ok, err := r.resolveLiterals(t); err != nil || ok {
		return rng, ok, err
	}
	if rng, ok := r.resolveRelative(t); ok {
		return rng, true, nil
	}
	return DateRange{}, false, nil
}

func (r *DateResolver) resolveLiterals(t string) (DateRange, bool, error) {
	if m := explicitRangePattern.FindStringSubmatch(t); m != nil {
		start, err := parseLiteral(m[1])
		if err != nil {
			return DateRange{}, false, err
		}
		end, err := parseLiteral(m[2])
		if err != nil {
			return DateRange{}, false, err
		}
		return DateRange{Start: start, End: end}, true, nil
	}

	literals := literalPattern.FindAllString(t, 2)
	switch len(literals) {
	case 0:
		return DateRange{}, false, nil
	case 1:
		day, err := parseLiteral(literals[0])
		if err != nil {
			return DateRange{}, false, err
		}
		return DateRange{Start: day, End: day}, true, nil
	default:
		start, err := parseLiteral(literals[0])
		if err != nil {
			return DateRange{}, false, err
		}
		end, err := parseLiteral(literals[1])
		if err != nil {
			return DateRange{}, false, err
		}
		return DateRange{Start: start, End: end}, true, nil
	}
}

func (r *DateResolver) resolveRelative(t string) (DateRange, bool) {
	today := r.Today()
	year, month, _ := today.Date()

	if m := trailingPattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			var from time.Time
			switch unit := m[2]; {
			case strings.HasPrefix(unit, "dia"):
				from = today.AddDate(0, 0, -n)
			case strings.HasPrefix(unit, "semana"):
				from = today.AddDate(0, 0, -7*n)
			case strings.HasPrefix(unit, "mes"):
				from = today.AddDate(0, -n, 0)
			default:
				from = today.AddDate(-n, 0, 0)
			}
			return DateRange{Start: DateOf(from).AddDays(1), End: today}, true
		}
	}

	if m := namedMonthPattern.FindStringSubmatch(t); m != nil {
		return monthRange(m[1], m[2], year), true
	}

	switch {
	case previousMonthWords.MatchString(t):
		first := NewDate(year, month-1, 1)
		y, mo, _ := first.Date()
		return DateRange{Start: first, End: lastDayOfMonth(y, mo)}, true
	case currentMonthWords.MatchString(t):
		return DateRange{Start: NewDate(year, month, 1), End: today}, true
	case currentWeekWords.MatchString(t):
		return DateRange{Start: weekStart(today), End: today}, true
	case previousWeekWords.MatchString(t):
		start := weekStart(today).AddDays(-7)
		return DateRange{Start: start, End: start.AddDays(6)}, true
	case currentYearWords.MatchString(t):
		return DateRange{Start: NewDate(year, time.January, 1), End: today}, true
	case previousYearWords.MatchString(t):
		return DateRange{Start: NewDate(year-1, time.January, 1), End: NewDate(year-1, time.December, 31)}, true
	case todayWord.MatchString(t):
		return DateRange{Start: today, End: today}, true
	case yesterdayWord.MatchString(t):
		y := today.AddDays(-1)
		return DateRange{Start: y, End: y}, true
	}

	if m := bareMonthPattern.FindStringSubmatch(t); m != nil {
		return monthRange(m[1], m[2], year), true
	}
	return DateRange{}, false
}

func monthRange(name, rawYear string, currentYear int) DateRange {
	year := currentYear
	if rawYear != "" {
		if y, err := strconv.Atoi(rawYear); err == nil {
			year = y
		}
	}
	month := spanishMonths[name]
	return DateRange{Start: NewDate(year, month, 1), End: lastDayOfMonth(year, month)}
}

// weekStart returns the Monday on or before d.
func weekStart(d Date) Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// parseLiteral reads ISO or day-first numeric dates and rejects impossible days.
func parseLiteral(raw string) (Date, error) {
	var y, m, d int
	if g := isoLiteral.FindStringSubmatch(raw); g != nil {
		y, _ = strconv.Atoi(g[1])
		m, _ = strconv.Atoi(g[2])
		d, _ = strconv.Atoi(g[3])
	} else if g := dayFirstLiteral.FindStringSubmatch(raw); g != nil {
		d, _ = strconv.Atoi(g[1])
		m, _ = strconv.Atoi(g[2])
		y, _ = strconv.Atoi(g[3])
		switch len(g[3]) {
		case 2:
			y += 2000
		case 3:
			return Date{}, invalidDate(raw)
		}
	} else {
		return Date{}, invalidDate(raw)
	}

	if m < 1 || m > 12 || d < 1 || d > lastDayOfMonth(y, time.Month(m)).Day() {
		return Date{}, invalidDate(raw)
	}
	return NewDate(y, time.Month(m), d), nil
}

func invalidDate(raw string) error {
	return NewInputError(CodeInvalidDate, "fecha inválida: "+raw)
}
