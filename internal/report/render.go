// Package report prints filter results on the console and exports them to
// YAML or JSON files.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zxg-sec/blfilter/internal/filter"
	"github.com/zxg-sec/blfilter/internal/tui/styles"
	"github.com/zxg-sec/blfilter/internal/util"
)

// Options controls console rendering.
type Options struct {
	// MaxTextWidth truncates matched texts to this many columns, 0 = no limit.
	MaxTextWidth int
	// OutputPath is printed as the destination of the written lines.
	OutputPath string
	// Kept names which lines were written ("retained" or "matched").
	Kept string
}

// Printer renders reports to one writer.
type Printer struct {
	w     io.Writer
	sheet *styles.Sheet
}

// NewPrinter returns a Printer writing to w with color mode colorMode.
func NewPrinter(w io.Writer, colorMode string) *Printer {
	return NewPrinterWithRenderer(w, styles.NewRenderer(w, colorMode))
}

// NewPrinterWithRenderer returns a Printer using an existing renderer.
func NewPrinterWithRenderer(w io.Writer, r *lipgloss.Renderer) *Printer {
	return &Printer{w: w, sheet: styles.NewSheet(r)}
}

// Print renders r.
func (p *Printer) Print(r *filter.Report, opts Options) error {
	_, err := io.WriteString(p.w, p.Render(r, opts))
	return err
}

// Render returns the report as text.
func (p *Printer) Render(r *filter.Report, opts Options) string {
	s := p.sheet
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(s.Title.Render("Filtering complete"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Original lines:"), s.Count.Render(fmt.Sprint(r.OriginalLines)))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Retained lines:"), s.Count.Render(fmt.Sprint(r.RetainedLines)))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Removed lines:"), s.Count.Render(fmt.Sprint(r.RemovedLines())))

	b.WriteString(s.Label.Render("Matched rules:"))
	b.WriteString("\n")
	if len(r.MatchedRules()) == 0 {
		b.WriteString(s.Muted.Render("  (none)"))
		b.WriteString("\n")
	}
	for _, rule := range r.MatchedRules() {
		fmt.Fprintf(&b, "  %s %s\n", s.Rule.Render(rule), s.Hits.Render(hitLabel(r.HitCount(rule))))
	}

	fmt.Fprintf(&b, "%s\n", s.Label.Render(fmt.Sprintf("Matched texts (%d):", len(r.MatchedTexts))))
	for _, nt := range r.Enumerated() {
		text := nt.Text
		if opts.MaxTextWidth > 0 {
			text = util.TruncateANSI(text, opts.MaxTextWidth)
		}
		fmt.Fprintf(&b, "  %s %s\n", s.Index.Render(fmt.Sprintf("%d:", nt.Index)), s.Text.Render(text))
	}

	if len(r.Skipped) > 0 {
		b.WriteString(s.Warning.Render("Skipped rules:"))
		b.WriteString("\n")
		for _, sk := range r.Skipped {
			fmt.Fprintf(&b, "  %s %s\n", s.Warning.Render(sk.Rule), s.Muted.Render("("+sk.Reason+")"))
		}
	}

	if opts.OutputPath != "" {
		label := "Result saved to:"
		if opts.Kept != "" {
			label = fmt.Sprintf("Result (%s lines) saved to:", opts.Kept)
		}
		fmt.Fprintf(&b, "%s %s\n", s.Label.Render(label), s.Path.Render(opts.OutputPath))
	}

	return b.String()
}

func hitLabel(n int) string {
	if n == 1 {
		return "(1 hit)"
	}
	return fmt.Sprintf("(%d hits)", n)
}
