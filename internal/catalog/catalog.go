// Package catalog holds the static classification table for every document type.
// The HTTP catalog endpoint and the generation core read the same rows, so tier gating,
// assembler choice and disclaimer policy are declared in exactly one place.
package catalog

import (
	"fmt"

	"github.com/jonathan/formation-kit/internal/llm"
	"github.com/jonathan/formation-kit/internal/types"
)

// AssemblerKind selects the prompt assembly family for a document type
type AssemblerKind string

// Assembler families
const (
	AssemblerLegal     AssemblerKind = "legal"
	AssemblerNarrative AssemblerKind = "narrative"
	AssemblerTabular   AssemblerKind = "tabular"
	AssemblerAdvisory  AssemblerKind = "advisory"
	AssemblerMarketing AssemblerKind = "marketing"
)

// ResponseMode is the shape of the oracle response
type ResponseMode string

// Response modes
const (
	ResponseText ResponseMode = "text"
	ResponseJSON ResponseMode = "json"
)

// Format is how the finished artifact is exported downstream
type Format string

// Export formats
const (
	FormatDocument Format = "document"
	FormatTabular  Format = "tabular"
)

// Entry is one row of the catalog
type Entry struct {
	Type               types.DocumentType `json:"type"`
	Label              string             `json:"label"`
	RequiredTier       types.Tier         `json:"required_tier"`
	Assembler          AssemblerKind      `json:"assembler"`
	Response           ResponseMode       `json:"response"`
	Format             Format             `json:"format"`
	DisclaimerRequired bool               `json:"disclaimer_required"`
	Profile            llm.ProfileName    `json:"profile"`
	// NameFields carry the business name, in priority order
	NameFields  []string `json:"-"`
	Description string   `json:"description"`
}

var (
	llcName       = []string{"llc_name", "business_name", "company_name"}
	corpName      = []string{"corporation_name", "business_name", "company_name"}
	businessName  = []string{"business_name", "company_name"}
	einLegalName  = []string{"legal_name", "business_name", "company_name"}
	legalDocument = row{AssemblerLegal, ResponseText, FormatDocument, true, llm.ProfileLegal}
	narrativeDoc  = row{AssemblerNarrative, ResponseText, FormatDocument, true, llm.ProfileNarrative}
	tabularDoc    = row{AssemblerTabular, ResponseText, FormatTabular, true, llm.ProfileFinancial}
	advisoryDoc   = row{AssemblerAdvisory, ResponseJSON, FormatDocument, true, llm.ProfileAdvisory}
	marketingDoc  = row{AssemblerMarketing, ResponseText, FormatDocument, false, llm.ProfileFastPath}
)

type row struct {
	assembler  AssemblerKind
	response   ResponseMode
	format     Format
	disclaimer bool
	profile    llm.ProfileName
}

func entry(dt types.DocumentType, label string, tier types.Tier, r row, names []string, desc string) Entry {
	return Entry{
		Type:               dt,
		Label:              label,
		RequiredTier:       tier,
		Assembler:          r.assembler,
		Response:           r.response,
		Format:             r.format,
		DisclaimerRequired: r.disclaimer,
		Profile:            r.profile,
		NameFields:         names,
		Description:        desc,
	}
}

var table = map[types.DocumentType]Entry{
	types.DocOperatingAgreement: entry(types.DocOperatingAgreement, "Operating Agreement", types.TierPro, legalDocument, llcName,
		"Governing agreement between the members of an LLC"),
	types.DocArticlesIncorporation: entry(types.DocArticlesIncorporation, "Articles of Incorporation", types.TierPro, legalDocument, corpName,
		"Formation filing that creates a corporation with the state"),
	types.DocBylaws: entry(types.DocBylaws, "Bylaws", types.TierPro, legalDocument, corpName,
		"Internal rules for a corporation's board, officers and shareholders"),
	types.DocBusinessPolicies: entry(types.DocBusinessPolicies, "Business Policies", types.TierPro, legalDocument, businessName,
		"Employee handbook policies for a small business"),
	types.DocEINForm: entry(types.DocEINForm, "EIN Application Worksheet", types.TierPremium, legalDocument, einLegalName,
		"Prepared answers for the IRS SS-4 employer identification number application"),
	types.DocBusinessPlan: entry(types.DocBusinessPlan, "Business Plan", types.TierPremium, narrativeDoc, businessName,
		"Investor-ready business plan"),
	types.DocExecutiveSummary: entry(types.DocExecutiveSummary, "Executive Summary", types.TierPremium, narrativeDoc, businessName,
		"One-document overview of the business for investors and lenders"),
	types.DocPitchDeck: entry(types.DocPitchDeck, "Pitch Deck", types.TierPro, narrativeDoc, businessName,
		"Slide-by-slide investor pitch outline with speaker notes"),
	types.DocChartOfAccounts: entry(types.DocChartOfAccounts, "Chart of Accounts", types.TierPro, tabularDoc, businessName,
		"Bookkeeping account list ready to import"),
	types.DocExpenseTracker: entry(types.DocExpenseTracker, "Expense Tracker", types.TierPro, tabularDoc, businessName,
		"Budget and expense log ready to import"),
	types.DocLeanCanvas: entry(types.DocLeanCanvas, "Lean Canvas", types.TierPremium, advisoryDoc, businessName,
		"One-page business model canvas"),
	types.DocSocialCalendar: entry(types.DocSocialCalendar, "Social Media Calendar", types.TierPro, advisoryDoc, businessName,
		"Four-week social media posting plan"),
	types.DocStartupChecklist: entry(types.DocStartupChecklist, "Startup Checklist", types.TierFree, advisoryDoc, businessName,
		"Phased launch checklist tailored to the business"),
	types.DocEmailSeries: entry(types.DocEmailSeries, "Email Series", types.TierPro, marketingDoc, businessName,
		"Five-part welcome email sequence"),
	types.DocEmailCampaign: entry(types.DocEmailCampaign, "Email Campaign", types.TierPro, marketingDoc, businessName,
		"Single promotional email campaign with follow-up"),
	types.DocSalesScripts: entry(types.DocSalesScripts, "Sales Scripts", types.TierPro, marketingDoc, businessName,
		"Call and outreach scripts with objection handling"),
}

// Lookup returns the catalog row for a document type
func Lookup(dt types.DocumentType) (Entry, bool) {
	e, ok := table[dt]
	return e, ok
}

// Get returns the catalog row for a document type, or an error for an unknown type
func Get(dt types.DocumentType) (Entry, error) {
	e, ok := table[dt]
	if !ok {
		return Entry{}, fmt.Errorf("unknown document type: %q", dt)
	}
	return e, nil
}

// All returns every row in declaration order
func All() []Entry {
	out := make([]Entry, 0, len(types.AllDocumentTypes))
	for _, dt := range types.AllDocumentTypes {
		out = append(out, table[dt])
	}
	return out
}

// ByTier returns the rows whose required tier is exactly tier
func ByTier(tier types.Tier) []Entry {
	var out []Entry
	for _, e := range All() {
		if e.RequiredTier == tier {
			out = append(out, e)
		}
	}
	return out
}
