// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/formation-kit/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxLinesToShow is the number of content lines shown in an artifact preview
	maxLinesToShow = 12
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(strings.ReplaceAll(line, "\t", " | ")))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(line string) string {
	r := []rune(line)
	if len(r) > boxWidth-4 {
		return string(r[:boxWidth-7]) + "..."
	}
	return line
}

// PrintArtifact outputs the title and a preview of a generated artifact
func (p *Printer) PrintArtifact(title, content string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	shown := min(len(lines), maxLinesToShow)

	var sb strings.Builder
	sb.WriteString(strings.Join(lines[:shown], "\n"))
	if len(lines) > maxLinesToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more lines", len(lines)-maxLinesToShow))
	}
	p.printBox(title, sb.String())
}

// PrintAllocations outputs an equity split
func (p *Printer) PrintAllocations(allocations []types.Allocation) {
	if len(allocations) == 0 {
		return
	}

	var sb strings.Builder
	var total float64
	for _, a := range allocations {
		sb.WriteString(fmt.Sprintf("%-30s %6.1f%%  (score %.2f)\n", a.Name, a.Percentage, a.Score))
		total += a.Percentage
	}
	sb.WriteString(fmt.Sprintf("%-30s %6.1f%%", "Total", total))
	p.printBox("Equity Split", sb.String())
}

// CatalogRow is one line of the catalog listing
type CatalogRow struct {
	DocumentType string
	Label        string
	RequiredTier string
	Allowed      *bool
	Reason       string
}

// PrintCatalog outputs the document catalog, with access decisions when known
func (p *Printer) PrintCatalog(rows []CatalogRow) {
	var sb strings.Builder
	for i, r := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%-24s %-8s", r.DocumentType, r.RequiredTier))
		if r.Allowed != nil {
			if *r.Allowed {
				sb.WriteString(" ✓")
			} else {
				sb.WriteString(" ✗")
			}
		}
	}
	p.printBox("Document Catalog", sb.String())

	//nolint:errcheck // writing to stdout; errors are not recoverable
	for _, r := range rows {
		if r.Reason != "" {
			fmt.Fprintf(p.out, "  %s: %s\n", r.DocumentType, r.Reason)
		}
	}
}
