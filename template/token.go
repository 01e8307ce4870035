package template

import "strings"

// path is a dotted name. The empty path is the current
// context itself.
type path []string

func (p path) String() string {
	if len(p) == 0 {
		return "."
	}

	return strings.Join(p, ".")
}

func (p path) equal(o path) bool {
	if len(p) != len(o) {
		return false
	}

	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}

	return true
}

type token interface {
	isToken()
}

type textToken struct {
	Text string
}

type insertToken struct {
	Name      path
	Format    string
	Formatted bool
}

type sectionToken struct {
	Name     path
	Inverted bool
	Children []token
}

type setFormatToken struct {
	TypeName string
	Format   string
}

func (textToken) isToken()      {}
func (insertToken) isToken()    {}
func (sectionToken) isToken()   {}
func (setFormatToken) isToken() {}
