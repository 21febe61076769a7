package namecheap

import "strings"

type param struct {
	key, value string
}

// query is an ordered parameter list. Encode serializes it the way HTML
// forms do (application/x-www-form-urlencoded): parameters keep insertion
// order, space becomes '+', and only ASCII alphanumerics and "*-._" are left
// unescaped.
type query []param

func (q query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		formEscape(&b, p.key)
		b.WriteByte('=')
		formEscape(&b, p.value)
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func formEscape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case c == '*' || c == '-' || c == '.' || c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
}
