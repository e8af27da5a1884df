package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-kit/internal/types"
)

func TestLoadFields(t *testing.T) {
	file := writeTempFile(t, "answers.json", `{"llc_name":"Acme LLC","state":"Texas","members":["Ada"]}`)

	fields, err := loadFields(file, []string{
		"state=Delaware",
		`members=["Ada Lovelace","Alan Turing"]`,
		"management_structure = member-managed",
		"note=[not json",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme LLC", fields.String("llc_name"))
	assert.Equal(t, "Delaware", fields.String("state"))
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, fields.List("members"))
	assert.Equal(t, "member-managed", fields.String("management_structure"))
	assert.Equal(t, "[not json", fields["note"])
}

func TestLoadFields_Errors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		pairs []string
	}{
		{name: "missing equals", pairs: []string{"state"}},
		{name: "blank key", pairs: []string{" =Delaware"}},
		{name: "missing file", path: "/nonexistent/answers.json"},
		{name: "broken file", path: writeTempFile(t, "broken.json", "{")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFields(tt.path, tt.pairs)
			assert.Error(t, err)
		})
	}
}

func TestFieldValue(t *testing.T) {
	assert.Equal(t, "plain", fieldValue("plain"))
	assert.Equal(t, []any{"a", "b"}, fieldValue(`["a","b"]`))
	assert.Equal(t, map[string]any{"k": "v"}, fieldValue(`{"k":"v"}`))
	assert.Equal(t, "{broken", fieldValue("{broken"))
}

func TestAdHocRequester(t *testing.T) {
	r, err := adHocRequester("Pro", 12)
	require.NoError(t, err)
	assert.Equal(t, types.Requester{Tier: types.TierPro, AccountAgeDays: 12}, r)

	_, err = adHocRequester("gold", 12)
	assert.Error(t, err)

	_, err = adHocRequester("pro", -1)
	assert.Error(t, err)
}

func TestGenerateCommand_FlagsValidation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "Missing --type flag",
			args:        []string{"generate", "--field", "state=Delaware"},
			errorString: "required",
		},
		{
			name:        "Unknown document type",
			args:        []string{"generate", "--type", "press_release"},
			errorString: "unknown document type",
		},
		{
			name:        "Malformed field",
			args:        []string{"generate", "--type", "bylaws", "--field", "state"},
			errorString: "expected key=value",
		},
	}

	binaryPath := getBinaryPath(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := exec.Command(binaryPath, tt.args...).CombinedOutput()
			assert.Error(t, err)
			assert.Contains(t, string(output), tt.errorString)
		})
	}
}

func TestTokenCommand_RequiresUserID(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "token").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "user-id")
}
