package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Highest group number a template reference may name.
const maxGroups = math.MaxInt / 2

// templateRule is one piece of a parsed replacement template:
// either a literal or a reference to a capturing group.
type templateRule struct {
	literal string
	index   int // -1 if the rule is a literal
}

func (t *templateRule) isLiteral() bool {
	return t.index < 0
}

// Substitute replaces matches of the pattern in s with the expansion of the
// template. References like `\g<name>`, `\g<2>` and `\1` select group texts;
// groups that did not take part in a match expand to nothing.
// Limits above zero cap the number of replacements. The second return value
// is the number of replacements made.
func (p *Pattern) Substitute(template, s string, n int) (string, int, error) {
	rules, err := p.parseTemplate(template)
	if err != nil {
		return "", 0, err
	}

	matches := p.FindAll(s, n)
	if len(matches) == 0 {
		return s, 0, nil
	}

	var b strings.Builder
	beg := 0

	for _, m := range matches {
		sp := m.Span(0)

		b.WriteString(s[beg:sp.Start])

		for i := range rules {
			r := &rules[i]
			if r.isLiteral() {
				b.WriteString(r.literal)
			} else if text, ok := m.Group(r.index); ok {
				b.WriteString(text)
			}
		}

		beg = sp.End
	}

	b.WriteString(s[beg:])

	return b.String(), len(matches), nil
}

// parseTemplate splits a replacement template into literal and
// group-reference rules. Templates without a backslash skip the parse.
func (p *Pattern) parseTemplate(template string) ([]templateRule, error) {
	if !strings.ContainsRune(template, '\\') {
		return []templateRule{{literal: template, index: -1}}, nil
	}

	var rules []templateRule

	addLiteral := func(s string) {
		if s == "" {
			return
		}

		if len(rules) > 0 {
			last := &rules[len(rules)-1]

			if last.isLiteral() { // merge adjacent literals
				last.literal += s
				return
			}
		}

		rules = append(rules, templateRule{literal: s, index: -1})
	}

	addIndex := func(i int) error {
		if i > p.NumGroups() {
			return fmt.Errorf("invalid group reference %d", i)
		}

		rules = append(rules, templateRule{index: i})
		return nil
	}

	for len(template) > 0 {
		before, rest, ok := strings.Cut(template, `\`)
		if !ok {
			break
		}

		addLiteral(before)

		template = rest

		if template == "" {
			return nil, errors.New("bad escape (end of template)")
		}

		c := template[0]

		template = template[1:]

		switch c {
		case 'g': // named or numbered group reference
			index, rest, err := p.extractGroup(template)
			if err != nil {
				return nil, err
			}

			template = rest

			err = addIndex(index)
			if err != nil {
				return nil, err
			}
		case '0': // octal escape
			chr := 0

			if len(template) > 0 && isOctDigitByte(template[0]) {
				chr = digitByte(template[0])

				if len(template) > 1 && isOctDigitByte(template[1]) {
					chr = 8*chr + digitByte(template[1])
					template = template[2:]
				} else {
					template = template[1:]
				}
			}

			addLiteral(string(rune(chr)))
		case '1', '2', '3', '4', '5', '6', '7', '8', '9': // group index or octal escape
			index := digitByte(c)

			if len(template) > 0 && isDigitByte(template[0]) {
				if isOctDigitByte(c) && isOctDigitByte(template[0]) &&
					len(template) > 1 && isOctDigitByte(template[1]) {

					index = 8*(8*index+digitByte(template[0])) + digitByte(template[1])
					if index > 0o377 {
						return nil, fmt.Errorf(`octal escape value \%s outside of range 0-0o377`, string(c)+template[:2])
					}

					template = template[2:]

					addLiteral(string(rune(index)))
					break // break out of case
				}

				index = 10*index + digitByte(template[0])
				template = template[1:]
			}

			err := addIndex(index)
			if err != nil {
				return nil, err
			}
		default:
			if escape, ok := unescapeLetter(c); ok {
				addLiteral(escape)
			} else {
				if isASCIILetterByte(c) {
					return nil, fmt.Errorf("bad escape \\%c", c)
				}

				addLiteral(`\`)
				addLiteral(string(c))
			}
		}
	}

	addLiteral(template)

	return rules, nil
}

// extractGroup parses the `<name>` part of a `\g<name>` reference and
// resolves it to a group index.
func (p *Pattern) extractGroup(template string) (index int, rest string, err error) {
	if template == "" || template[0] != '<' {
		err = errors.New("missing <")
		return
	}

	name, rest, ok := strings.Cut(template[1:], ">")

	if name == "" { // check the name first, so empty names report as missing
		err = errors.New("missing group name")
		return
	}

	if !ok {
		err = errors.New("missing >, unterminated name")
		return
	}

	if uindex, e := strconv.ParseUint(name, 10, 32); e != nil {
		if !isIdentifier(name) {
			err = fmt.Errorf("bad character in group name %q", name)
			return
		}

		index = p.GroupIndex(name)
		if index < 0 {
			err = fmt.Errorf("unknown group name %q", name)
			return
		}
	} else {
		if uindex >= maxGroups {
			err = fmt.Errorf("invalid group reference %d", uindex)
			return
		}

		index = int(uindex)
	}

	return
}

func isDigitByte(c byte) bool {
	return '0' <= c && c <= '9'
}

func isOctDigitByte(c byte) bool {
	return '0' <= c && c <= '7'
}

func digitByte(c byte) int {
	return int(c - '0')
}

func isASCIILetterByte(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// unescapeLetter resolves the letter escapes templates may contain.
func unescapeLetter(c byte) (string, bool) {
	switch c {
	case 'a':
		return "\a", true
	case 'b':
		return "\b", true
	case 'f':
		return "\f", true
	case 'n':
		return "\n", true
	case 'r':
		return "\r", true
	case 't':
		return "\t", true
	case 'v':
		return "\v", true
	default:
		return "", false
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		if c == '_' || unicode.IsLetter(c) {
			continue
		}
		if i > 0 && unicode.IsDigit(c) {
			continue
		}

		return false
	}

	return true
}
