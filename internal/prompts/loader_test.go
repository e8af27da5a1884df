package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(AssemblyFile, "plain-text-directive")
	require.NoError(t, err)
	assert.Contains(t, prompt, "plain text only")
	assert.Contains(t, prompt, "CAPITAL LETTERS")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(AssemblyFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(AssemblyFile, "legal-system", map[string]string{
		"Label":        "Operating Agreement",
		"Jurisdiction": "Delaware",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "drafting a Operating Agreement")
	assert.Contains(t, prompt, "laws of Delaware")
	assert.NotContains(t, prompt, "{{.")
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(AssemblyFile)
	require.NoError(t, err)
	for _, key := range []string{
		"plain-text-directive", "outline-directive", "legal-system", "narrative-system",
		"tabular-system", "no-formula-directive", "advisory-system", "marketing-system",
		"template-notice",
	} {
		assert.Contains(t, keys, key)
	}
	assert.True(t, sortedStrings(keys))
}

// Tabular output is imported as literal data, so its directives must not carry formula markers.
func TestTabularDirectives_NoFormulaMarkers(t *testing.T) {
	ClearCache()

	for _, key := range []string{"tabular-system", "no-formula-directive", "plain-text-directive"} {
		prompt := MustGet(AssemblyFile, key)
		assert.NotContains(t, prompt, "=", key)
		assert.NotContains(t, prompt, "@", key)
	}
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(AssemblyFile, "outline-directive")
	require.NoError(t, err)
	prompt2, err := Get(AssemblyFile, "outline-directive")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if strings.Compare(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}
