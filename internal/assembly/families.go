package assembly

import (
	"fmt"
	"strings"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/prompts"
	"github.com/jonathan/formation-kit/internal/schemas"
	"github.com/jonathan/formation-kit/internal/types"
)

// buildLegal interpolates the jurisdiction and named parties into a contract-style request
func buildLegal(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error) {
	jurisdiction := fields.First("state", "jurisdiction")
	system, err := prompts.Render(prompts.AssemblyFile, "legal-system", map[string]string{
		"Label":        entry.Label,
		"Jurisdiction": jurisdiction,
	})
	if err != nil {
		return Request{}, err
	}

	var outline strings.Builder
	if err := writeOutline(&outline, doc.Outline); err != nil {
		return Request{}, err
	}
	instructions, err := composeInstructions(system, outline.String())
	if err != nil {
		return Request{}, err
	}

	var content strings.Builder
	content.WriteString(factsContent(entry, doc, fields, nil))
	content.WriteString(fmt.Sprintf("\nGoverning jurisdiction: %s\n", jurisdiction))
	if doc.Parties != "" {
		if parties := fields.List(doc.Parties); len(parties) > 0 {
			content.WriteString("Named parties:\n")
			for i, p := range parties {
				content.WriteString(fmt.Sprintf("%d. %s\n", i+1, p))
			}
		}
	}
	if name := businessName(entry, fields); name != "" {
		content.WriteString(fmt.Sprintf("Use the exact name %q wherever the entity is named.\n", name))
	}

	return newRequest(entry, instructions, content.String()), nil
}

// buildNarrative produces long-form sectioned business documents
func buildNarrative(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error) {
	system, err := prompts.Render(prompts.AssemblyFile, "narrative-system", map[string]string{
		"Label":        entry.Label,
		"BusinessName": businessName(entry, fields),
	})
	if err != nil {
		return Request{}, err
	}

	var outline strings.Builder
	if err := writeOutline(&outline, doc.Outline); err != nil {
		return Request{}, err
	}
	instructions, err := composeInstructions(system, outline.String())
	if err != nil {
		return Request{}, err
	}
	return newRequest(entry, instructions, factsContent(entry, doc, fields, nil)), nil
}

// buildTabular requests strictly TAB-delimited rows and forbids formulas.
// User answers are stripped of leading formula markers before they reach the prompt.
func buildTabular(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error) {
	system, err := prompts.Render(prompts.AssemblyFile, "tabular-system", map[string]string{
		"Label":        entry.Label,
		"BusinessName": literal(businessName(entry, fields)),
	})
	if err != nil {
		return Request{}, err
	}
	noFormula, err := directive("no-formula-directive")
	if err != nil {
		return Request{}, err
	}

	var layout strings.Builder
	layout.WriteString("HEADER ROW COLUMNS, IN ORDER:\n")
	for i, c := range doc.Columns {
		layout.WriteString(fmt.Sprintf("%d. %s\n", i+1, c))
	}
	layout.WriteString("\nGROUP ROWS IN THIS ORDER:\n")
	for i, g := range doc.Outline {
		layout.WriteString(fmt.Sprintf("%d. %s\n", i+1, g))
	}

	instructions, err := composeInstructions(system, noFormula, layout.String())
	if err != nil {
		return Request{}, err
	}
	return newRequest(entry, instructions, factsContent(entry, doc, fields, literal)), nil
}

// literal strips leading spreadsheet formula markers so a value is imported as data
func literal(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "=+@"))
}

// buildAdvisory requests a JSON object conforming to the type's response schema
func buildAdvisory(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error) {
	schema, ok := schemas.ResponseSchema(string(entry.Type))
	if !ok {
		return Request{}, fmt.Errorf("no response schema for %s", entry.Type)
	}
	system, err := prompts.Render(prompts.AssemblyFile, "advisory-system", map[string]string{
		"Label":        entry.Label,
		"BusinessName": businessName(entry, fields),
		"Schema":       schema,
	})
	if err != nil {
		return Request{}, err
	}

	var sections strings.Builder
	sections.WriteString("Cover these sections, in order:\n")
	for i, heading := range doc.Outline {
		sections.WriteString(fmt.Sprintf("%d. %s\n", i+1, heading))
	}

	instructions, err := composeInstructions(system, sections.String())
	if err != nil {
		return Request{}, err
	}
	return newRequest(entry, instructions, factsContent(entry, doc, fields, nil)), nil
}

// buildMarketing is the fast path for high-volume, low-stakes copy
func buildMarketing(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error) {
	system, err := prompts.Render(prompts.AssemblyFile, "marketing-system", map[string]string{
		"Label":        entry.Label,
		"BusinessName": businessName(entry, fields),
	})
	if err != nil {
		return Request{}, err
	}

	var outline strings.Builder
	if err := writeOutline(&outline, doc.Outline); err != nil {
		return Request{}, err
	}
	instructions, err := composeInstructions(system, outline.String())
	if err != nil {
		return Request{}, err
	}

	content := factsContent(entry, doc, fields, nil)
	if fields.String("tone") == "" {
		content += "Tone: warm and professional\n"
	}
	return newRequest(entry, instructions, content), nil
}
