package rex

import (
	"strconv"
	"strings"

	"github.com/magnetde/rex/engine"
)

// Substitution builds a replacement template fragment by fragment and
// applies it to inputs. Unlike Pattern it is a plain mutable accumulator:
// Add and Backreference modify the receiver and return it for chaining.
type Substitution struct {
	pattern  *Pattern
	compiled *engine.Pattern
	stack    []string
}

// NewSubstitution creates an empty substitution for the pattern.
func NewSubstitution(p *Pattern) *Substitution {
	return &Substitution{pattern: p}
}

// Add appends text to the replacement template. The text is taken as is,
// so backslash sequences in it are interpreted by the template parser.
func (s *Substitution) Add(text string) *Substitution {
	s.stack = append(s.stack, text)
	return s
}

// Backreference appends a reference to the numbered group, expanding to the
// group's matched text on replacement.
func (s *Substitution) Backreference(group int) *Substitution {
	return s.Add(`\g<` + strconv.Itoa(group) + `>`)
}

// NamedBackreference appends a reference to the named group.
func (s *Substitution) NamedBackreference(name string) *Substitution {
	return s.Add(`\g<` + name + `>`)
}

// Pattern returns the pattern the substitution was created for.
func (s *Substitution) Pattern() *Pattern {
	return s.pattern
}

// Template returns the accumulated replacement template.
func (s *Substitution) Template() string {
	return strings.Join(s.stack, "")
}

// Replace substitutes every match of the pattern in the input with the
// accumulated template. Counts above zero cap the number of replacements.
// The pattern is compiled once on first use.
func (s *Substitution) Replace(input string, count int) (string, error) {
	if s.compiled == nil {
		cp, err := s.pattern.Compile()
		if err != nil {
			return "", err
		}

		s.compiled = cp
	}

	out, _, err := s.compiled.Substitute(s.Template(), input, count)

	return out, err
}
