package format

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// spec is the parsed form of
// [[fill]align][sign]['#']['0'][width]['.' precision][type].
type spec struct {
	fill  rune
	align rune
	plus  bool
	alt   bool
	zero  bool
	width int
	prec  int
	verb  rune
}

// maxCount bounds width and precision.
const maxCount = 1 << 16

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '^'
}

func parseSpec(s string) (spec, error) {
	sp := spec{fill: ' ', prec: -1}
	rs := []rune(s)
	i := 0

	switch {
	case len(rs) >= 2 && isAlign(rs[1]):
		sp.fill, sp.align = rs[0], rs[1]
		i = 2
	case len(rs) >= 1 && isAlign(rs[0]):
		sp.align = rs[0]
		i = 1
	}

	if i < len(rs) && rs[i] == '+' {
		sp.plus = true
		i++
	}

	if i < len(rs) && rs[i] == '#' {
		sp.alt = true
		i++
	}

	if i < len(rs) && rs[i] == '0' {
		sp.zero = true
		i++
	}

	var ok bool

	sp.width, i, ok = digits(rs, i)
	if !ok {
		return spec{}, ErrInvalidSpec
	}

	if i < len(rs) && rs[i] == '.' {
		start := i + 1

		sp.prec, i, ok = digits(rs, start)
		if !ok || i == start {
			return spec{}, ErrInvalidSpec
		}
	}

	if i < len(rs) {
		if !strings.ContainsRune("xXobe", rs[i]) {
			return spec{}, ErrInvalidSpec
		}

		sp.verb = rs[i]
		i++
	}

	if i != len(rs) {
		return spec{}, ErrInvalidSpec
	}

	return sp, nil
}

// digits reads a decimal run starting at i and returns its
// value (0 when empty) and the index after it. It fails
// when the value exceeds maxCount.
func digits(rs []rune, i int) (int, int, bool) {
	n := 0

	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		n = n*10 + int(rs[i]-'0')
		if n > maxCount {
			return 0, i, false
		}

		i++
	}

	return n, i, true
}

func (sp spec) apply(a Arg) (string, error) {
	var sign, prefix, body string

	switch a.kind {
	case argString:
		if sp.verb != 0 || sp.plus || sp.alt || sp.zero {
			return "", ErrInvalidSpec
		}

		body = a.str
		if sp.prec >= 0 && utf8.RuneCountInString(body) > sp.prec {
			body = string([]rune(body)[:sp.prec])
		}

		return sp.pad("", body, '<'), nil

	case argInt:
		mag := uint64(a.num)
		if a.num < 0 {
			sign = "-"
			mag = -mag
		}

		base := 10

		switch sp.verb {
		case 0:
		case 'x', 'X':
			base, prefix = 16, "0x"
		case 'o':
			base, prefix = 8, "0o"
		case 'b':
			base, prefix = 2, "0b"
		default:
			return "", ErrInvalidSpec
		}

		body = strconv.FormatUint(mag, base)
		if sp.verb == 'X' {
			body = strings.ToUpper(body)
		}

		if !sp.alt {
			prefix = ""
		}

	case argFloat:
		if sp.alt || (sp.verb != 0 && sp.verb != 'e') {
			return "", ErrInvalidSpec
		}

		f := a.flt
		if math.Signbit(f) && !math.IsNaN(f) {
			sign = "-"
			f = -f
		}

		verb := byte('f')
		if sp.verb == 'e' {
			verb = 'e'
		}

		body = formatFloat(f, verb, sp.prec)
	}

	if sign == "" && sp.plus {
		sign = "+"
	}

	if sp.zero && sp.align == 0 {
		n := sp.width - utf8.RuneCountInString(sign+prefix+body)
		if n > 0 {
			body = strings.Repeat("0", n) + body
		}

		return sign + prefix + body, nil
	}

	return sp.pad(sign+prefix, body, '>'), nil
}

// pad applies fill and alignment up to the spec width.
// def is the alignment used when the spec sets none.
func (sp spec) pad(lead string, body string, def rune) string {
	text := lead + body

	n := sp.width - utf8.RuneCountInString(text)
	if n <= 0 {
		return text
	}

	align := sp.align
	if align == 0 {
		align = def
	}

	fill := string(sp.fill)

	switch align {
	case '<':
		return text + strings.Repeat(fill, n)
	case '^':
		return strings.Repeat(fill, n/2) + text +
			strings.Repeat(fill, n-n/2)
	default:
		return strings.Repeat(fill, n) + text
	}
}

func formatFloat(f float64, verb byte, prec int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	return strconv.FormatFloat(f, verb, prec, 64)
}
