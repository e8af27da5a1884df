// Package templates renders the free, non-generated template for every document type.
// Templates are built from the same fixed outlines the assembler sends to the oracle,
// so a template and a generated document share their section structure.
package templates

import (
	"fmt"
	"strings"

	"github.com/jonathan/formation-kit/internal/assembly"
	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/prompts"
	"github.com/jonathan/formation-kit/internal/types"
)

// Template is a static fill-in document
type Template struct {
	DocumentType types.DocumentType `json:"document_type"`
	Title        string             `json:"title"`
	Format       catalog.Format     `json:"format"`
	Content      string             `json:"content"`
}

// Render builds the template for a document type
func Render(dt types.DocumentType) (*Template, error) {
	entry, err := catalog.Get(dt)
	if err != nil {
		return nil, err
	}

	if entry.Format == catalog.FormatTabular {
		return &Template{
			DocumentType: dt,
			Title:        entry.Label + " Template",
			Format:       entry.Format,
			Content:      strings.Join(assembly.Columns(dt), "\t") + "\n",
		}, nil
	}

	notice, err := prompts.Get(prompts.AssemblyFile, "template-notice")
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(strings.ToUpper(entry.Label))
	sb.WriteString("\n\n")
	sb.WriteString(notice)
	sb.WriteString("\n\n")

	all, required := assembly.FieldNames(dt)
	if len(all) > 0 {
		sb.WriteString("INFORMATION TO GATHER\n")
		requiredSet := make(map[string]bool, len(required))
		for _, r := range required {
			requiredSet[r] = true
		}
		for _, name := range all {
			marker := ""
			if requiredSet[name] {
				marker = " (required)"
			}
			sb.WriteString(fmt.Sprintf("- %s%s\n", placeholder(name), marker))
		}
		sb.WriteString("\n")
	}

	for i, heading := range assembly.Outline(dt) {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, heading))
		sb.WriteString(fmt.Sprintf("[Describe %s here]\n\n", strings.ToLower(heading)))
	}

	return &Template{
		DocumentType: dt,
		Title:        entry.Label + " Template",
		Format:       entry.Format,
		Content:      strings.TrimSpace(sb.String()) + "\n",
	}, nil
}

func placeholder(field string) string {
	return "[" + strings.ToUpper(strings.ReplaceAll(field, "_", " ")) + "]"
}
