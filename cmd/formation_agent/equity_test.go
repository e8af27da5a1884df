package main

import (
	"encoding/json"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-kit/internal/types"
)

func TestParseFounder(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    types.FounderContribution
		wantErr string
	}{
		{
			name: "valid",
			spec: "Ada Lovelace:8,2,10,7.5",
			want: types.FounderContribution{Name: "Ada Lovelace", Skills: 8, Capital: 2, Time: 10, IP: 7.5},
		},
		{
			name: "spaces around scores",
			spec: "Alan: 1, 2, 3, 4",
			want: types.FounderContribution{Name: "Alan", Skills: 1, Capital: 2, Time: 3, IP: 4},
		},
		{name: "missing colon", spec: "Ada 1,2,3,4", wantErr: "expected Name:"},
		{name: "blank name", spec: " :1,2,3,4", wantErr: "expected Name:"},
		{name: "three scores", spec: "Ada:1,2,3", wantErr: "expected 4 scores, got 3"},
		{name: "not a number", spec: "Ada:1,two,3,4", wantErr: "is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFounder(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFounders(t *testing.T) {
	array := writeTempFile(t, "founders.json", `[{"name":"Ada","skills":5},{"name":"Alan","time":5}]`)
	wrapped := writeTempFile(t, "request.json", `{"founders":[{"name":"Grace","capital":4}]}`)
	broken := writeTempFile(t, "broken.json", `{"founders":`)

	founders, err := loadFounders(array, []string{"Linus:1,1,1,1"})
	require.NoError(t, err)
	require.Len(t, founders, 3)
	assert.Equal(t, "Ada", founders[0].Name)
	assert.Equal(t, "Linus", founders[2].Name)

	founders, err = loadFounders(wrapped, nil)
	require.NoError(t, err)
	require.Len(t, founders, 1)
	assert.Equal(t, 4.0, founders[0].Capital)

	_, err = loadFounders(broken, nil)
	assert.Error(t, err)

	_, err = loadFounders("", nil)
	assert.ErrorContains(t, err, "no founders")
}

func TestRunEquity(t *testing.T) {
	setFlag(t, &equityFounders, []string{"Ada:10,10,10,10", "Alan:0,0,0,0"})
	setFlag(t, &equityInputFile, "")
	setFlag(t, &equityJSON, true)

	cmd, out := captureCommand()
	require.NoError(t, runEquity(cmd, nil))

	var resp types.EquityResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, 100.0, resp.Allocations[0].Percentage)
	assert.Equal(t, 0.0, resp.Allocations[1].Percentage)
}

func TestRunEquity_Printed(t *testing.T) {
	setFlag(t, &equityFounders, []string{"Ada:6,6,6,6", "Alan:2,2,2,2"})
	setFlag(t, &equityInputFile, "")
	setFlag(t, &equityJSON, false)

	cmd, out := captureCommand()
	require.NoError(t, runEquity(cmd, nil))
	assert.Contains(t, out.String(), "Equity Split")
	assert.Contains(t, out.String(), "75.0%")
	assert.Contains(t, out.String(), "25.0%")
}

func TestRunEquity_SingleFounder(t *testing.T) {
	setFlag(t, &equityFounders, []string{"Solo:5,5,5,5"})
	setFlag(t, &equityInputFile, "")

	cmd, _ := captureCommand()
	err := runEquity(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2")
}

func TestEquityCommand_Binary(t *testing.T) {
	binaryPath := getBinaryPath(t)

	output, err := exec.Command(binaryPath, "equity", "--founder", "Ada:1,1,1,1", "--founder", "Alan:1,1,1,1").CombinedOutput()
	require.NoError(t, err, string(output))
	assert.Contains(t, string(output), "50.0%")

	output, err = exec.Command(binaryPath, "equity").CombinedOutput()
	assert.Error(t, err)
	assert.Contains(t, string(output), "no founders")
}
