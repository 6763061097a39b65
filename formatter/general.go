package formatter

const errorTemplate = `{{header .Message .HasPosition .MaxLineNumWidth .Filename .Line .Column -}}
{{if .HasSnippet -}}
{{snippet .SnippetLine .Line .MaxLineNumWidth .CommonIndent .Padding -}}
{{caret .SnippetLine .Column .CommonIndent .Padding -}}
{{end -}}
{{hint .Hint .Padding -}}
`
