package order

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-faster/errors"
	"golang.org/x/text/width"
)

// ErrInvalidNumber is returned when a raw string cannot be parsed as an
// order number even after normalization.
var ErrInvalidNumber = errors.New("invalid order number")

// ParsedNumber is the result of decoding a user-supplied order number.
// DateDigits is the 8-digit YYYYMMDD creation date; callers must cross-check
// it against the order actually stored under ID before revealing anything.
type ParsedNumber struct {
	DateDigits string
	ID         int64
}

// Number derives the human-facing order number from an order's internal id
// and creation timestamp: YYYYMMDD-NNNN, with the id left-padded to at least
// four digits. Wider ids are rendered in full, never truncated.
func Number(id int64, createdAt time.Time) string {
	return fmt.Sprintf("%s-%04d", createdAt.Format("20060102"), id)
}

var (
	// Dash-like and slash-like punctuation seen in user input: em/en/figure
	// dashes, horizontal bar, minus sign, wave dashes, and plain slash all
	// collapse to the canonical separator. Fullwidth forms are already folded
	// to their narrow counterparts before this replacer runs.
	separatorReplacer = strings.NewReplacer(
		"‒", "-", // figure dash
		"–", "-", // en dash
		"—", "-", // em dash
		"―", "-", // horizontal bar
		"−", "-", // minus sign
		"〜", "-", // wave dash
		"~", "-",
		"/", "-",
	)

	datePattern   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	numberPattern = regexp.MustCompile(`^(\d{8})-?(\d+)$`)
)

// ParseNumber decodes a user-typed order number, tolerating common
// transcription variants: fullwidth digits and punctuation (mobile IME
// input), assorted dash and slash separators, stray whitespace and periods,
// and dashed YYYY-MM-DD date prefixes. The id portion is not fixed-width.
//
// The 8-digit date is returned as typed; validating it against the stored
// order is the caller's job, so a guessed id with the wrong date can be
// rejected without leaking that the id exists.
func ParseNumber(raw string) (ParsedNumber, error) {
	s := width.Narrow.String(strings.TrimSpace(raw))
	s = separatorReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = datePattern.ReplaceAllString(s, "$1$2$3")

	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return ParsedNumber{}, ErrInvalidNumber
	}

	id, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || id <= 0 {
		return ParsedNumber{}, ErrInvalidNumber
	}

	return ParsedNumber{DateDigits: m[1], ID: id}, nil
}
