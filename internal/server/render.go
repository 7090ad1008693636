package server

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/jonathan/resume-screener/internal/session"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// markdown renders model output; raw HTML in the input is dropped.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// pageData is the view model of the index page.
type pageData struct {
	HasKey         bool
	JobDescription string
	Messages       []renderedMessage
	Flash          string
	Error          string
}

type renderedMessage struct {
	Role session.Role
	HTML template.HTML
}

// renderMarkdown converts message content to HTML.
func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(content) + "</pre>") //nolint:gosec // escaped above
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark omits raw HTML unless WithUnsafe is set
}

func renderMessages(msgs []session.Message) []renderedMessage {
	out := make([]renderedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, renderedMessage{Role: m.Role, HTML: renderMarkdown(m.Content)})
	}
	return out
}

func renderPage(w io.Writer, data pageData) error {
	return pageTemplate.Execute(w, data)
}
