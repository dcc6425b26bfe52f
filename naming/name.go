package naming

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Name is a hierarchical instance name made of dot-separated tokens, for
// example "Top.Uart[1]".
type Name struct {
	Tokens []Token
}

// Token is one element of a hierarchical name.
type Token struct {
	Elem  string
	Index []int
}

// String rebuilds the dotted form of the name.
func (n Name) String() string {
	var b strings.Builder

	for i, t := range n.Tokens {
		if i > 0 {
			b.WriteByte('.')
		}

		b.WriteString(t.Elem)

		for _, idx := range t.Index {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(idx))
			b.WriteByte(']')
		}
	}

	return b.String()
}

// Parse parses a hierarchical instance name.
func Parse(s string) (Name, error) {
	if s == "" {
		return Name{}, errors.New("name must not be empty")
	}

	parts := strings.Split(s, ".")
	n := Name{Tokens: make([]Token, 0, len(parts))}

	for _, p := range parts {
		t, err := parseToken(p)
		if err != nil {
			return Name{}, errors.Wrapf(err, "name %q", s)
		}

		n.Tokens = append(n.Tokens, t)
	}

	return n, nil
}

func parseToken(s string) (Token, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if strings.IndexByte(s, ']') >= 0 {
			return Token{}, errors.New("bracket must match")
		}

		return Token{Elem: s}, elemMustBeValid(s)
	}

	t := Token{Elem: s[:open]}
	if err := elemMustBeValid(t.Elem); err != nil {
		return Token{}, err
	}

	rest := s[open:]
	for rest != "" {
		if rest[0] != '[' {
			return Token{}, errors.New("unexpected text after index")
		}

		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Token{}, errors.New("bracket must match")
		}

		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return Token{}, errors.Errorf("index %q must be a non-negative integer",
				rest[1:end])
		}

		t.Index = append(t.Index, idx)
		rest = rest[end+1:]
	}

	return t, nil
}

func elemMustBeValid(elem string) error {
	if elem == "" {
		return errors.New("name element must not be empty")
	}

	for _, c := range []string{"_", "\"", "'", "-", ":", " "} {
		if strings.Contains(elem, c) {
			return errors.Errorf("name element must not contain %q", c)
		}
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		return errors.New("name element must start with a capital letter")
	}

	return nil
}

// MustBeValid panics if the given instance name is not a valid hierarchical
// name.
func MustBeValid(name string) {
	if _, err := Parse(name); err != nil {
		panic(err.Error())
	}
}
