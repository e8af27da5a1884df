//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier_Ordering(t *testing.T) {
	assert.True(t, TierPremium.AtLeast(TierPro))
	assert.True(t, TierPremium.AtLeast(TierFree))
	assert.True(t, TierPro.AtLeast(TierPro))
	assert.False(t, TierFree.AtLeast(TierPro))
	assert.False(t, TierPro.AtLeast(TierPremium))
	assert.False(t, Tier("gold").AtLeast(TierFree))
	assert.False(t, TierPremium.AtLeast(Tier("gold")))
}

func TestTier_TotalOrder(t *testing.T) {
	for _, a := range AllTiers {
		for _, b := range AllTiers {
			// exactly one of a<b, a==b, a>b
			assert.True(t, a.AtLeast(b) || b.AtLeast(a), "%s vs %s", a, b)
		}
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier(" Premium ")
	require.NoError(t, err)
	assert.Equal(t, TierPremium, tier)

	_, err = ParseTier("enterprise")
	assert.Error(t, err)
}

func TestParseDocumentType(t *testing.T) {
	d, err := ParseDocumentType("EIN_FORM")
	require.NoError(t, err)
	assert.Equal(t, DocEINForm, d)

	_, err = ParseDocumentType("resume")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document type")
}

func TestAllDocumentTypes_Unique(t *testing.T) {
	seen := map[DocumentType]bool{}
	for _, d := range AllDocumentTypes {
		assert.False(t, seen[d], "duplicate %s", d)
		seen[d] = true
	}
	assert.Len(t, seen, 16)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusGenerated, StatusDownloaded))
	assert.True(t, CanTransition(StatusDraft, StatusGenerated))
	assert.False(t, CanTransition(StatusDownloaded, StatusGenerated))
	assert.False(t, CanTransition(StatusDownloaded, StatusDownloaded))
	assert.False(t, CanTransition(StatusDraft, StatusDownloaded))
}

func TestEntitlementContext_AccountAgeDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		created time.Time
		want    int
	}{
		{"same moment", now, 0},
		{"just under a day", now.Add(-23 * time.Hour), 0},
		{"two days", now.Add(-49 * time.Hour), 2},
		{"five days exactly", now.Add(-5 * 24 * time.Hour), 5},
		{"future timestamp", now.Add(time.Hour), 0},
		{"zero value", time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := EntitlementContext{Tier: TierPremium, AccountCreatedAt: tt.created}
			assert.Equal(t, tt.want, c.AccountAgeDays(now))
			assert.Equal(t, tt.want, c.Requester(now).AccountAgeDays)
		})
	}
}

func TestFieldValues_List_FiltersBlanks(t *testing.T) {
	var fields FieldValues
	require.NoError(t, json.Unmarshal([]byte(`{
		"members": ["Alice", "  ", "", "Bob"],
		"owners": [{"name": "Carol", "ownership": 60, "note": ""}, {"name": " "}],
		"notes": "line one\n\nline two",
		"single": "only"
	}`), &fields))

	assert.Equal(t, []string{"Alice", "Bob"}, fields.List("members"))
	assert.Equal(t, []string{"name: Carol; ownership: 60"}, fields.List("owners"))
	assert.Equal(t, []string{"line one", "line two"}, fields.List("notes"))
	assert.Equal(t, []string{"only"}, fields.List("single"))
	assert.Empty(t, fields.List("missing"))
}

func TestFieldValues_Scalars(t *testing.T) {
	fields := FieldValues{
		"name":   "  Acme LLC ",
		"shares": float64(1000000),
		"remote": true,
		"weeks":  "6",
		"nested": map[string]any{"city": "Austin"},
	}

	assert.Equal(t, "Acme LLC", fields.String("name"))
	assert.Equal(t, "1000000", fields.String("shares"))
	assert.Equal(t, "yes", fields.String("remote"))
	assert.Equal(t, 6, fields.Int("weeks", 4))
	assert.Equal(t, 4, fields.Int("missing", 4))
	assert.Equal(t, "", fields.String("nested"))
	assert.Equal(t, "Austin", fields.Object("nested")["city"])
	assert.True(t, fields.Has("name"))
	assert.False(t, fields.Has("missing"))
	assert.Equal(t, "Acme LLC", fields.First("llc_name", "name"))
}

func TestGenerateRequest_Validate(t *testing.T) {
	valid := GenerateRequest{DocumentType: "bylaws", FieldValues: FieldValues{"corporation_name": "Acme"}}
	assert.NoError(t, valid.Validate())

	missing := GenerateRequest{FieldValues: FieldValues{}}
	assert.Error(t, missing.Validate())
}

func TestBatchGenerateRequest_Validate(t *testing.T) {
	docs := make([]GenerateRequest, MaxBatchSize+1)
	for i := range docs {
		docs[i] = GenerateRequest{DocumentType: "bylaws", FieldValues: FieldValues{}}
	}

	tooMany := BatchGenerateRequest{Documents: docs}
	assert.Error(t, tooMany.Validate())

	ok := BatchGenerateRequest{Documents: docs[:2]}
	assert.NoError(t, ok.Validate())

	empty := BatchGenerateRequest{}
	assert.Error(t, empty.Validate())
}

func TestValidate_SharedAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				errs <- (&EquityRequest{}).Validate()
				return
			}
			errs <- (&GenerateRequest{DocumentType: "bylaws", FieldValues: FieldValues{}}).Validate()
		}(i)
	}
	wg.Wait()
	close(errs)

	var failed int
	for err := range errs {
		if err != nil {
			failed++
		}
	}
	assert.Equal(t, 10, failed, "only the empty equity requests fail")
}
