package library

import (
	"strings"

	"github.com/matzehuels/masktower/pkg/errors"
)

// MaxNameLength is the longest cell name accepted by the mask writer.
const MaxNameLength = 47

// Name is a validated cell name. The zero Name is invalid; obtain one from
// NewName or MustName.
type Name struct {
	s string
}

// NewName validates s for use as a cell name. Dots are rewritten to "p"
// (so "1.5" becomes "1p5"); any remaining character outside [A-Za-z0-9_] or
// a result longer than MaxNameLength is a NAMING error.
func NewName(s string) (Name, error) {
	text := strings.ReplaceAll(s, ".", "p")
	if text == "" {
		return Name{}, errors.New(errors.ErrCodeNaming, "empty cell name")
	}

	var illegal []string
	seen := map[rune]bool{}
	for _, r := range text {
		if isNameRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		illegal = append(illegal, "'"+string(r)+"'")
	}
	if len(illegal) > 0 {
		return Name{}, errors.New(errors.ErrCodeNaming, "illegal characters in name %q (%s)", text, strings.Join(illegal, ", "))
	}
	if len(text) > MaxNameLength {
		return Name{}, errors.New(errors.ErrCodeNaming, "name %q exceeds max length of %d", text, MaxNameLength)
	}
	return Name{s: text}, nil
}

// MustName is like NewName but panics on invalid input. Use it for literal
// names only.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the validated name.
func (n Name) String() string { return n.s }

// Valid reports whether n was produced by NewName.
func (n Name) Valid() bool { return n.s != "" }

func isNameRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
