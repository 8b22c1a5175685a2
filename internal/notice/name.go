package notice

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/siren-cli/internal/model"
)

var (
	// ErrEmptyName is returned for a blank name.
	ErrEmptyName = eris.New("Le champ ne peut pas être vide.")
	// ErrDigitsInName is returned when a name contains a digit.
	ErrDigitsInName = eris.New("Les chiffres ne sont pas autorisés dans les noms et prénoms.")
)

// nameFormatter holds per-call casers; cases.Caser is not safe for
// concurrent use.
type nameFormatter struct {
	lower cases.Caser
	title cases.Caser
}

func newNameFormatter() *nameFormatter {
	return &nameFormatter{
		lower: cases.Lower(language.French),
		title: cases.Title(language.French),
	}
}

// FormatName normalizes a French given name or surname: whitespace is
// collapsed, each hyphen- or apostrophe-separated segment is capitalized,
// and the particles de, du, des and d' stay lower-case ("la" becomes "La",
// as in "de La Fontaine").
func FormatName(raw string) (string, error) {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return "", ErrEmptyName
	}
	if strings.IndexFunc(cleaned, unicode.IsDigit) >= 0 {
		return "", ErrDigitsInName
	}

	f := newNameFormatter()
	words := strings.Split(cleaned, " ")
	for i, w := range words {
		words[i] = f.word(w)
	}
	return strings.Join(words, " "), nil
}

// FormatRepresentative formats both names and returns the representative.
func FormatRepresentative(givenName, surname string) (*model.Representative, error) {
	g, err := FormatName(givenName)
	if err != nil {
		return nil, eris.Wrap(err, "prénom")
	}
	s, err := FormatName(surname)
	if err != nil {
		return nil, eris.Wrap(err, "nom")
	}
	return &model.Representative{GivenName: g, Surname: s}, nil
}

func (f *nameFormatter) word(w string) string {
	if f.lower.String(w) == "de" {
		return "de"
	}

	if strings.Contains(w, "-") {
		parts := strings.Split(w, "-")
		for i, p := range parts {
			parts[i] = f.segment(p)
		}
		return strings.Join(parts, "-")
	}

	if i := strings.IndexAny(w, "'’"); i >= 0 {
		apos := string([]rune(w[i:])[0])
		parts := strings.Split(w, apos)
		if f.lower.String(parts[0]) == "d" {
			// d'Artagnan: the elided particle stays lower-case.
			parts[0] = "d"
			parts[1] = f.segment(parts[1])
			return strings.Join(parts, apos)
		}
		for i, p := range parts {
			parts[i] = f.segment(p)
		}
		return strings.Join(parts, apos)
	}

	return f.segment(w)
}

func (f *nameFormatter) segment(s string) string {
	if s == "" {
		return s
	}
	switch lower := f.lower.String(s); lower {
	case "de", "du", "des":
		return lower
	case "la":
		return "La"
	}
	return f.title.String(s)
}
