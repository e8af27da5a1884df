// Package assembly turns a document type and questionnaire answers into a generation request.
// Each document type is served by a Strategy looked up once per request in a Registry.
package assembly

import (
	"fmt"
	"strings"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/prompts"
	"github.com/jonathan/formation-kit/internal/types"
)

// Request is an assembled generation request
type Request struct {
	DocumentType types.DocumentType
	// Instructions are the system instructions sent to the oracle
	Instructions string
	// Content is the user content built from the questionnaire answers
	Content string
	Profile llm.Profile
	// Structured is set when the oracle must answer with a schema-validated JSON object
	Structured bool
}

// LLMRequest converts the assembled request into an oracle call
func (r Request) LLMRequest() llm.Request {
	return llm.RequestFor(r.Profile, r.Instructions, r.Content)
}

// Strategy validates and builds requests for one document type
type Strategy struct {
	Validate     func(fields types.FieldValues) error
	Build        func(fields types.FieldValues) (Request, error)
	RequiredTier func() types.Tier
}

// Registry maps each document type to its strategy
type Registry struct {
	strategies map[types.DocumentType]Strategy
}

// NewRegistry builds a strategy for every catalog row
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[types.DocumentType]Strategy, len(types.AllDocumentTypes))}
	for _, entry := range catalog.All() {
		r.strategies[entry.Type] = newStrategy(entry)
	}
	return r
}

// Register replaces the strategy for a document type
func (r *Registry) Register(dt types.DocumentType, s Strategy) {
	r.strategies[dt] = s
}

// Lookup returns the strategy for a document type
func (r *Registry) Lookup(dt types.DocumentType) (Strategy, error) {
	s, ok := r.strategies[dt]
	if !ok {
		return Strategy{}, &UnknownTypeError{DocumentType: dt}
	}
	return s, nil
}

// Assemble validates fields and builds the request for a document type.
// A *ValidationError lists every field that must be corrected.
func (r *Registry) Assemble(dt types.DocumentType, fields types.FieldValues) (Request, error) {
	s, err := r.Lookup(dt)
	if err != nil {
		return Request{}, err
	}
	if err := s.Validate(fields); err != nil {
		return Request{}, err
	}
	return s.Build(fields)
}

var defaultRegistry = NewRegistry()

// Assemble uses the default registry
func Assemble(dt types.DocumentType, fields types.FieldValues) (Request, error) {
	return defaultRegistry.Assemble(dt, fields)
}

type builder func(entry catalog.Entry, doc document, fields types.FieldValues) (Request, error)

var builders = map[catalog.AssemblerKind]builder{
	catalog.AssemblerLegal:     buildLegal,
	catalog.AssemblerNarrative: buildNarrative,
	catalog.AssemblerTabular:   buildTabular,
	catalog.AssemblerAdvisory:  buildAdvisory,
	catalog.AssemblerMarketing: buildMarketing,
}

func newStrategy(entry catalog.Entry) Strategy {
	doc := documents[entry.Type]
	build := builders[entry.Assembler]
	return Strategy{
		Validate: func(fields types.FieldValues) error {
			return validateFields(entry.Type, doc.Fields, fields)
		},
		Build: func(fields types.FieldValues) (Request, error) {
			if build == nil {
				return Request{}, fmt.Errorf("no builder for assembler %q", entry.Assembler)
			}
			return build(entry, doc, fields)
		},
		RequiredTier: func() types.Tier {
			return entry.RequiredTier
		},
	}
}

// businessName returns the first supplied name field of the row
func businessName(entry catalog.Entry, fields types.FieldValues) string {
	return fields.First(entry.NameFields...)
}

func newRequest(entry catalog.Entry, instructions, content string) Request {
	return Request{
		DocumentType: entry.Type,
		Instructions: instructions,
		Content:      content,
		Profile:      llm.GetProfile(entry.Profile),
		Structured:   entry.Response == catalog.ResponseJSON,
	}
}

// directive loads a fixed directive from the assembly prompt file
func directive(key string) (string, error) {
	return prompts.Get(prompts.AssemblyFile, key)
}

// writeOutline appends the outline directive followed by the numbered outline
func writeOutline(sb *strings.Builder, outline []string) error {
	d, err := directive("outline-directive")
	if err != nil {
		return err
	}
	sb.WriteString(d)
	sb.WriteString("\n\nOUTLINE:\n")
	for i, heading := range outline {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, heading))
	}
	return nil
}

// composeInstructions joins the family system prompt, the plain-text directive and any extra blocks
func composeInstructions(system string, blocks ...string) (string, error) {
	plain, err := directive("plain-text-directive")
	if err != nil {
		return "", err
	}
	parts := []string{strings.TrimSpace(system), plain}
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// factsContent renders the questionnaire answers under a heading
func factsContent(entry catalog.Entry, doc document, fields types.FieldValues, clean func(string) string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Prepare the %s using the following business information.\n\n", entry.Label))
	sb.WriteString("BUSINESS INFORMATION\n")
	writeFacts(&sb, doc.Fields, fields, clean)
	return sb.String()
}
