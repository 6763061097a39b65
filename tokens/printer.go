package tokens

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String renders ts as source text. Leading trivia is written as recorded;
// a single space is inserted only where two tokens would otherwise fuse.
func String(ts []Token) string {
	p := &printer{}
	p.seq(ts)
	return p.sb.String()
}

// Fprint writes ts followed by trailer to w.
func Fprint(w io.Writer, ts []Token, trailer string) error {
	p := &printer{}
	p.seq(ts)
	p.sb.WriteString(trailer)
	_, err := io.WriteString(w, p.sb.String())
	return err
}

type printer struct {
	sb   strings.Builder
	last rune
	// alone is set after an Alone punctuation token.
	alone bool
}

func (p *printer) seq(ts []Token) {
	for _, t := range ts {
		p.token(t)
	}
}

func (p *printer) token(t Token) {
	if t.Kind == Group && t.Delim == None {
		if t.Lead != "" && len(t.Children) > 0 {
			first := t.Children[0]
			first.Lead = t.Lead + first.Lead
			p.token(first)
			p.seq(t.Children[1:])
			return
		}
		p.seq(t.Children)
		return
	}

	if t.Kind != Group {
		lead := t.Lead
		if lead == "" && t.Kind == Punct && p.alone {
			lead = " "
		}
		p.write(lead, t.Text)
		p.alone = t.Kind == Punct && t.Spacing == Alone
		return
	}
	p.write(t.Lead, t.Delim.Open())
	p.alone = false
	p.seq(t.Children)
	p.write(t.CloseLead, t.Delim.Close())
	p.alone = false
}

func (p *printer) write(lead, text string) {
	if lead == "" && p.fuses(text) {
		lead = " "
	}
	p.sb.WriteString(lead)
	p.sb.WriteString(text)
	if text != "" {
		p.last, _ = utf8.DecodeLastRuneInString(text)
	} else if lead != "" {
		p.last = ' '
	}
}

// fuses reports whether writing text right after the previous token would
// change how the output is tokenized.
func (p *printer) fuses(text string) bool {
	if p.last == 0 || text == "" {
		return false
	}
	next, _ := utf8.DecodeRuneInString(text)
	if isWordRune(p.last) && isWordRune(next) {
		return true
	}
	if p.last == '/' && (next == '/' || next == '*') {
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || r == '"' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
