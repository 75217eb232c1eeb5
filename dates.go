package spacetraveling

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

// Prismic writes offsets without a colon ("+0000"); RFC 3339 is accepted too.
var publicationLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.RFC3339Nano,
}

var shortMonths = [][12]string{
	{"jan.", "fev.", "mar.", "abr.", "mai.", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."},
	{"Jan.", "Feb.", "Mar.", "Apr.", "May", "Jun.", "Jul.", "Aug.", "Sep.", "Oct.", "Nov.", "Dec."},
}

// Index i of supportedLocales selects shortMonths[i].
var supportedLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.AmericanEnglish,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// DateFormatter turns publication timestamps into display strings such as
// "15 mar. 2021".
type DateFormatter struct {
	months [12]string
	loc    *time.Location
}

// NewDateFormatter picks the closest supported locale to locale (falling back
// to pt-BR) and formats in the time zone named tz (falling back to
// America/Sao_Paulo, then UTC).
func NewDateFormatter(locale, tz string) DateFormatter {
	idx := 0
	if tag, err := language.Parse(locale); err == nil {
		_, idx, _ = localeMatcher.Match(tag)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc, err = time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.UTC
		}
	}
	return DateFormatter{months: shortMonths[idx], loc: loc}
}

// Format renders raw. A nil timestamp yields "". An unparseable one is a
// malformed record.
func (f DateFormatter) Format(raw *string) (string, error) {
	if raw == nil {
		return "", nil
	}
	t, err := ParsePublicationDate(*raw)
	if err != nil {
		return "", fmt.Errorf("%w: first_publication_date %q", ErrMalformedRecord, *raw)
	}
	t = t.In(f.loc)
	return fmt.Sprintf("%02d %s %d", t.Day(), f.months[t.Month()-1], t.Year()), nil
}

// ParsePublicationDate parses a content API timestamp.
func ParsePublicationDate(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range publicationLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
