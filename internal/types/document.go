package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType identifies a kind of generated artifact
type DocumentType string

// DocumentType constants for every artifact the platform can produce
const (
	DocOperatingAgreement    DocumentType = "operating_agreement"
	DocArticlesIncorporation DocumentType = "articles_incorporation"
	DocBylaws                DocumentType = "bylaws"
	DocBusinessPlan          DocumentType = "business_plan"
	DocExecutiveSummary      DocumentType = "executive_summary"
	DocChartOfAccounts       DocumentType = "chart_of_accounts"
	DocExpenseTracker        DocumentType = "expense_tracker"
	DocLeanCanvas            DocumentType = "lean_canvas"
	DocEINForm               DocumentType = "ein_form"
	DocSocialCalendar        DocumentType = "social_calendar"
	DocStartupChecklist      DocumentType = "startup_checklist"
	DocEmailSeries           DocumentType = "email_series"
	DocPitchDeck             DocumentType = "pitch_deck"
	DocBusinessPolicies      DocumentType = "business_policies"
	DocEmailCampaign         DocumentType = "email_campaign"
	DocSalesScripts          DocumentType = "sales_scripts"
)

// AllDocumentTypes lists every declared document type
var AllDocumentTypes = []DocumentType{
	DocOperatingAgreement,
	DocArticlesIncorporation,
	DocBylaws,
	DocBusinessPlan,
	DocExecutiveSummary,
	DocChartOfAccounts,
	DocExpenseTracker,
	DocLeanCanvas,
	DocEINForm,
	DocSocialCalendar,
	DocStartupChecklist,
	DocEmailSeries,
	DocPitchDeck,
	DocBusinessPolicies,
	DocEmailCampaign,
	DocSalesScripts,
}

// Valid reports whether d is a declared document type
func (d DocumentType) Valid() bool {
	for _, known := range AllDocumentTypes {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDocumentType parses a document type identifier
func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown document type: %q", s)
	}
	return d, nil
}

// ArtifactStatus is the lifecycle status of a stored artifact
type ArtifactStatus string

// Artifact lifecycle statuses
const (
	StatusDraft      ArtifactStatus = "draft"
	StatusGenerated  ArtifactStatus = "generated"
	StatusDownloaded ArtifactStatus = "downloaded"
)

// CanTransition reports whether an artifact may move from one status to another.
// Content is immutable; only the status advances.
func CanTransition(from, to ArtifactStatus) bool {
	switch {
	case from == StatusDraft && to == StatusGenerated:
		return true
	case from == StatusGenerated && to == StatusDownloaded:
		return true
	default:
		return false
	}
}

// Artifact is a generated document instance stored with content and status.
// Each regeneration creates a new Artifact; existing ones are never patched.
type Artifact struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	DocumentType  DocumentType   `json:"document_type"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Status        ArtifactStatus `json:"status"`
	ContentDigest string         `json:"content_digest,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	DownloadedAt  *time.Time     `json:"downloaded_at,omitempty"`
}

// Requester is the tier context of the caller at evaluation time
type Requester struct {
	Tier           Tier   `json:"tier"`
	AccountAgeDays int    `json:"account_age_days"`
	Email          string `json:"email,omitempty"`
}

// EntitlementContext is supplied by the entitlement provider for the current caller
type EntitlementContext struct {
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email,omitempty"`
	Tier             Tier      `json:"tier"`
	AccountCreatedAt time.Time `json:"account_created_at"`
}

// AccountAgeDays returns the number of whole days between account creation and now
func (c EntitlementContext) AccountAgeDays(now time.Time) int {
	if c.AccountCreatedAt.IsZero() || now.Before(c.AccountCreatedAt) {
		return 0
	}
	return int(now.Sub(c.AccountCreatedAt).Hours() / 24)
}

// Requester converts the context into the requester view used by the resolver
func (c EntitlementContext) Requester(now time.Time) Requester {
	return Requester{
		Tier:           c.Tier,
		AccountAgeDays: c.AccountAgeDays(now),
		Email:          c.Email,
	}
}

// GenerationRequest is constructed per invocation and never persisted
type GenerationRequest struct {
	DocumentType DocumentType `json:"document_type"`
	FieldValues  FieldValues  `json:"field_values"`
	Requester    Requester    `json:"requester"`
}
