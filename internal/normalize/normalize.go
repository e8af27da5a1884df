// Package normalize finalizes raw oracle output into a titled plain-text artifact.
// Normalization is structural only and idempotent: running it on finalized content
// returns the same content, with the disclaimer still present exactly once.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/types"
)

// Disclaimer is appended once, after all generated content
const Disclaimer = "DISCLAIMER\n" +
	"This document was prepared with the assistance of artificial intelligence and is provided for " +
	"informational purposes only. It is not legal, tax or financial advice, and using it does not create " +
	"an attorney-client or advisory relationship. Requirements vary by jurisdiction and change over time. " +
	"Have a qualified attorney or accountant review this document before you sign, file or rely on it."

// GenericName stands in for the business name when none was supplied
const GenericName = "Business"

// Result is a finalized artifact body
type Result struct {
	Title   string
	Content string
}

var (
	htmlTagPattern    = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^<>]*)?/?>`)
	headingPattern    = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*?)\s*#*\s*$`)
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	italicPattern     = regexp.MustCompile(`(^|[^\w*])\*([^*\s][^*\n]*?)\*`)
	underscorePattern = regexp.MustCompile(`(^|[^\w])_([^_\s][^_\n]*?)_($|[^\w])`)
	bulletPattern     = regexp.MustCompile(`^(\s*)[*+]\s+`)
	separatorPattern  = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips disallowed markup, appends the disclaimer when the document type requires it,
// and derives the title from the business name fields.
func Normalize(raw string, documentType types.DocumentType, fields types.FieldValues) (Result, error) {
	entry, err := catalog.Get(documentType)
	if err != nil {
		return Result{}, err
	}

	content := strings.ReplaceAll(raw, "\r\n", "\n")
	if htmlTagPattern.MatchString(content) {
		content, err = flattenHTML(content)
		if err != nil {
			return Result{}, err
		}
		// decoded entities can leave tag-shaped text behind
		content = htmlTagPattern.ReplaceAllString(content, "")
	}
	content = stripMarkdown(content)
	tabular := entry.Format == catalog.FormatTabular
	if tabular {
		content = toDelimited(content)
	}
	content = tidy(content, tabular)

	if entry.DisclaimerRequired {
		content = AppendDisclaimer(content)
	}

	return Result{
		Title:   Title(entry, fields),
		Content: content,
	}, nil
}

// Title returns "<business name> <Label>", falling back to the generic name
func Title(entry catalog.Entry, fields types.FieldValues) string {
	name := strings.Join(strings.Fields(fields.First(entry.NameFields...)), " ")
	if name == "" {
		name = GenericName
	}
	return name + " " + entry.Label
}

// AppendDisclaimer appends the disclaimer block, replacing any copies already at the end
func AppendDisclaimer(content string) string {
	content = strings.TrimSpace(content)
	for strings.HasSuffix(content, Disclaimer) {
		content = strings.TrimSpace(strings.TrimSuffix(content, Disclaimer))
	}
	if content == "" {
		return Disclaimer
	}
	return content + "\n\n" + Disclaimer
}

// HasDisclaimer reports whether content ends with the disclaimer block
func HasDisclaimer(content string) bool {
	return strings.HasSuffix(strings.TrimSpace(content), Disclaimer)
}

// flattenHTML reduces an HTML fragment to text, keeping block boundaries as line breaks
func flattenHTML(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, head").Remove()
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.SetText(strings.ToUpper(strings.TrimSpace(s.Text())))
	})
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		if s.Next().Length() > 0 {
			s.AppendHtml("\t")
		}
	})
	doc.Find("li").PrependHtml("- ")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6, table, ul, ol").AppendHtml("\n")

	return doc.Text(), nil
}

// stripMarkdown removes code fences, emphasis markers and heading markers.
// Heading text is upper-cased so section structure survives as plain text.
func stripMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			line = strings.ToUpper(stripEmphasis(m[1]))
			out = append(out, line)
			continue
		}
		if trimmed == "---" || trimmed == "***" || trimmed == "___" {
			out = append(out, "")
			continue
		}
		line = bulletPattern.ReplaceAllString(line, "$1- ")
		out = append(out, stripEmphasis(line))
	}
	return strings.Join(out, "\n")
}

func stripEmphasis(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1$2")
	s = italicPattern.ReplaceAllString(s, "$1$2")
	// adjacent spans share a boundary character, so repeat until stable
	for {
		next := underscorePattern.ReplaceAllString(s, "$1$2$3")
		if next == s {
			break
		}
		s = next
	}
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}

// toDelimited converts pipe tables to TAB-delimited rows and neutralizes formula cells
func toDelimited(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if separatorPattern.MatchString(line) && strings.Contains(line, "-") {
			continue
		}
		var cells []string
		if strings.Contains(line, "|") {
			trimmed := strings.Trim(strings.TrimSpace(line), "|")
			cells = strings.Split(trimmed, "|")
		} else {
			cells = strings.Split(line, "\t")
		}
		for i, c := range cells {
			cells[i] = neutralizeCell(strings.TrimSpace(c))
		}
		out = append(out, strings.Join(cells, "\t"))
	}
	return strings.Join(out, "\n")
}

// neutralizeCell prefixes a cell that a spreadsheet would evaluate as a formula
func neutralizeCell(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '@':
		return "'" + cell
	case '-':
		if len(cell) == 1 {
			return cell
		}
		if _, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err != nil {
			return "'" + cell
		}
	}
	return cell
}

// tidy trims trailing whitespace and collapses blank runs; tabular rows keep empty trailing cells
func tidy(content string, tabular bool) string {
	cutset := " \t"
	if tabular {
		cutset = " "
	}
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, cutset)
	}
	content = strings.Join(lines, "\n")
	content = blankRunPattern.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
