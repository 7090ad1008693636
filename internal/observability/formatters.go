// Package observability provides formatted console output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/jonathan/resume-screener/internal/collection"
	"github.com/jonathan/resume-screener/internal/session"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// transcriptWidth is the width of message boxes, which wrap instead of truncating
	transcriptWidth = 80
)

var (
	userTitle      = color.New(color.FgGreen, color.Bold).SprintFunc()
	assistantTitle = color.New(color.FgCyan, color.Bold).SprintFunc()
	recordTitle    = color.New(color.FgYellow, color.Bold).SprintFunc()
	stageLine      = color.New(color.Faint).SprintFunc()
)

// Printer handles formatted output for the CLI.
// Colors follow color.NoColor, which is set when stdout is not a terminal.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a box of the given width with a title and content.
// Long lines are wrapped when wrap is set and truncated otherwise.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(width int, title string, paint func(a ...interface{}) string, content string, wrap bool) {
	inner := width - 4
	border := strings.Repeat("─", width-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", paint(pad(truncate(title, inner), inner)))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if !wrap {
			fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
			continue
		}
		for _, part := range wrapLine(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(part, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStage outputs a progress line for a running step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStage(stage string) {
	fmt.Fprintln(p.out, stageLine(fmt.Sprintf("→ %s...", stage)))
}

// PrintMessage outputs one session log entry.
func (p *Printer) PrintMessage(msg session.Message) {
	paint := userTitle
	if msg.Role == session.RoleAssistant {
		paint = assistantTitle
	}
	p.printBox(transcriptWidth, strings.ToUpper(string(msg.Role)), paint, msg.Content, true)
}

// PrintTranscript outputs the whole session log in order.
func (p *Printer) PrintTranscript(msgs []session.Message) {
	for _, msg := range msgs {
		p.PrintMessage(msg)
	}
}

// PrintRecord outputs a summary of a stored record.
func (p *Printer) PrintRecord(rec *collection.Record, replaced bool) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", rec.ID))
	sb.WriteString(fmt.Sprintf("Document: %d chars\n", utf8.RuneCountInString(rec.Document)))
	sb.WriteString(fmt.Sprintf("Job:      %s\n", firstLine(rec.Metadata.JobDescription)))
	sb.WriteString(fmt.Sprintf("Analysis: %d chars\n", utf8.RuneCountInString(rec.Metadata.Analysis)))
	if replaced {
		sb.WriteString("Replaced an existing record with the same filename")
	} else {
		sb.WriteString("New record")
	}

	p.printBox(boxWidth, "STORED RECORD", recordTitle, sb.String(), false)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// wrapLine splits line into pieces of at most n runes, breaking at spaces when possible.
func wrapLine(line string, n int) []string {
	var out []string
	r := []rune(line)
	for len(r) > n {
		cut := n
		for i := n; i > n/2; i-- {
			if r[i] == ' ' {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimRight(string(r[:cut]), " "))
		r = []rune(strings.TrimLeft(string(r[cut:]), " "))
	}
	return append(out, string(r))
}
