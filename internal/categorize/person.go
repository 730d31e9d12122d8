package categorize

import (
	"strings"
	"unicode"

	"github.com/MrJamesThe3rd/cartola/internal/fold"
)

// PersonDetector reports whether a text names a private person, which marks
// the movement as a person-to-person transfer.
type PersonDetector interface {
	IsPerson(text string) bool
}

var (
	DefaultFirstNames = []string{
		"HERNIA", "MAXIMILIANO", "JUAN", "MARIA", "CARLOS", "ANA",
		"LUIS", "CARMEN", "JOSE", "PATRICIA", "FRANCISCO", "ROSA",
	}
	DefaultLastNames = []string{
		"PEREZ", "GONZALEZ", "RODRIGUEZ", "LOPEZ", "MARTINEZ",
		"GARCIA", "FERNANDEZ", "SANCHEZ", "MORALES", "SILVA",
		"CASTRO", "ROJAS", "GALLARDO",
	}
)

// NameListDetector matches whole words against configured first and last
// names. Texts with fewer than two words never match.
type NameListDetector struct {
	names map[string]struct{}
}

func NewNameListDetector(firstNames, lastNames []string) *NameListDetector {
	names := make(map[string]struct{}, len(firstNames)+len(lastNames))

	for _, list := range [][]string{firstNames, lastNames} {
		for _, n := range list {
			if n = fold.Upper(strings.TrimSpace(n)); n != "" {
				names[n] = struct{}{}
			}
		}
	}

	return &NameListDetector{names: names}
}

func (d *NameListDetector) IsPerson(text string) bool {
	words := strings.FieldsFunc(fold.Upper(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) < 2 {
		return false
	}

	for _, w := range words {
		if _, ok := d.names[w]; ok {
			return true
		}
	}

	return false
}
