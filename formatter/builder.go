package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/dupl/duplicate"
	"github.com/gnolang/dupl/internal"
	"github.com/gnolang/dupl/tokens"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	hintStyle    = color.New(color.FgGreen, color.Bold)
)

// diagnostic is the printable part of an error.
type diagnostic struct {
	msg  string
	pos  tokens.Pos
	hint string
}

func diagnosticOf(err error) diagnostic {
	var dupErr *duplicate.Error
	if errors.As(err, &dupErr) {
		return diagnostic{msg: dupErr.Msg, pos: dupErr.Pos, hint: dupErr.Hint}
	}
	var lexErr *tokens.Error
	if errors.As(err, &lexErr) {
		return diagnostic{msg: lexErr.Msg, pos: lexErr.Pos}
	}
	return diagnostic{msg: err.Error()}
}

// FormatErrorMinimal renders err on a single line, `file:line:col: message`.
func FormatErrorMinimal(err error) string {
	d := diagnosticOf(err)
	if !d.pos.IsValid() {
		return d.msg
	}
	return d.pos.String() + ": " + d.msg
}

// FormatError renders err with the offending line of source, a caret under
// the position and the hint, if any. source may be nil.
func FormatError(err error, source *internal.SourceCode) string {
	d := diagnosticOf(err)

	var lines []string
	if source != nil {
		lines = source.Lines
	}
	line := d.pos.Line
	maxLineNumWidth := calculateMaxLineNumWidth(line)

	data := ErrorData{
		Message:         d.msg,
		Hint:            d.hint,
		Filename:        d.pos.Filename,
		Line:            line,
		Column:          d.pos.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		HasPosition:     d.pos.IsValid(),
		HasSnippet:      d.pos.IsValid() && line <= len(lines),
	}
	if data.HasSnippet {
		data.SnippetLine = lines[line-1]
		data.CommonIndent = findCommonIndent([]string{data.SnippetLine})
	}

	return buildError(data, errorTemplate)
}

/***** Error Formatter Builder *****/

type ErrorData struct {
	Message         string
	Hint            string
	Filename        string
	Line            int
	Column          int
	MaxLineNumWidth int
	Padding         string
	HasPosition     bool
	HasSnippet      bool
	SnippetLine     string
	CommonIndent    string
}

func buildError(data ErrorData, text string) string {
	funcMap := template.FuncMap{
		"header":  header,
		"snippet": codeSnippet,
		"caret":   caret,
		"hint":    hint,
	}

	tmpl := template.Must(template.New("error").Funcs(funcMap).Parse(text))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting error: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(message string, hasPosition bool, maxLineNumWidth int, filename string, line int, column int) string {
	endString := errorStyle.Sprint("error: ")
	endString += messageStyle.Sprintf("%s\n", message)
	if !hasPosition {
		return endString
	}

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, line, column)
	endString += "\n"
	return endString
}

func codeSnippet(line string, lineNum int, maxLineNumWidth int, commonIndent string, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	line = strings.TrimPrefix(line, commonIndent)
	endString += lineStyle.Sprintf("%*d | ", maxLineNumWidth, lineNum)
	endString += expandTabs(line) + "\n"
	return endString
}

func caret(line string, column int, commonIndent string, padding string) string {
	commonIndentWidth := calculateVisualColumn(commonIndent, len(commonIndent)+1)
	start := calculateVisualColumn(line, column) - commonIndentWidth
	if start < 0 {
		start = 0
	}

	endString := lineStyle.Sprintf("%s| ", padding)
	endString += strings.Repeat(" ", start)
	endString += messageStyle.Sprint("^")
	endString += "\n"
	return endString
}

func hint(hint string, padding string) string {
	if hint == "" {
		return ""
	}

	var endString string
	for i, line := range strings.Split(hint, "\n") {
		if i == 0 {
			endString += lineStyle.Sprintf("%s= ", padding)
		} else {
			endString += padding + "  "
		}
		endString += hintStyle.Sprint(line) + "\n"
	}
	return endString
}

func calculateMaxLineNumWidth(line int) int {
	return len(fmt.Sprintf("%d", line))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

func expandTabs(line string) string {
	var expanded strings.Builder
	visualColumn := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := tabWidth - (visualColumn % tabWidth)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			visualColumn += spaceCount
			continue
		}
		expanded.WriteRune(ch)
		visualColumn++
	}
	return expanded.String()
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	firstIndent := make([]rune, 0)
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
