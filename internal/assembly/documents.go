package assembly

import (
	"strings"

	"github.com/jonathan/formation-kit/internal/types"
)

// document is the fixed shape of one document type: its inputs and its output outline
type document struct {
	Fields  []field
	Outline []string
	// Columns is the header row of tabular documents
	Columns []string
	// Keys are the top-level response keys of structured documents, in rendering order
	Keys []string
	// Parties names the field listing the people bound by a legal document
	Parties string
}

var documents = map[types.DocumentType]document{
	types.DocOperatingAgreement: {
		Fields: []field{
			required("llc_name", "Company name"),
			required("state", "State of formation"),
			list("members", "Members"),
			required("management_structure", "Management structure"),
			optional("principal_address", "Principal office address"),
			optional("registered_agent", "Registered agent"),
			optional("business_purpose", "Business purpose"),
			optionalList("capital_contributions", "Capital contributions"),
			optional("profit_distribution", "Allocation of profits and losses"),
			optional("effective_date", "Effective date"),
		},
		Outline: []string{
			"FORMATION",
			"NAME AND PRINCIPAL OFFICE",
			"PURPOSE",
			"MEMBERS AND MEMBERSHIP INTERESTS",
			"CAPITAL CONTRIBUTIONS",
			"ALLOCATION OF PROFITS AND LOSSES",
			"DISTRIBUTIONS",
			"MANAGEMENT AND VOTING",
			"TRANSFER OF MEMBERSHIP INTERESTS",
			"DISSOLUTION AND WINDING UP",
		},
		Parties: "members",
	},
	types.DocArticlesIncorporation: {
		Fields: []field{
			required("corporation_name", "Corporation name"),
			required("state", "State of incorporation"),
			required("registered_agent", "Registered agent"),
			optional("registered_office", "Registered office address"),
			list("incorporators", "Incorporators"),
			numeric("authorized_shares", "Authorized shares"),
			number("par_value", "Par value per share"),
			optional("business_purpose", "Business purpose"),
			optionalList("directors", "Initial directors"),
			optional("effective_date", "Effective date"),
		},
		Outline: []string{
			"NAME",
			"REGISTERED AGENT AND OFFICE",
			"PURPOSE",
			"AUTHORIZED SHARES",
			"INCORPORATORS",
			"BOARD OF DIRECTORS",
			"INDEMNIFICATION",
			"EFFECTIVE DATE",
		},
		Parties: "incorporators",
	},
	types.DocBylaws: {
		Fields: []field{
			required("corporation_name", "Corporation name"),
			required("state", "State of incorporation"),
			numeric("board_size", "Number of directors"),
			optionalList("officers", "Officers"),
			optional("fiscal_year_end", "Fiscal year end"),
			optional("annual_meeting", "Annual shareholder meeting"),
			optional("quorum", "Quorum requirement"),
		},
		Outline: []string{
			"OFFICES",
			"SHAREHOLDERS",
			"BOARD OF DIRECTORS",
			"OFFICERS",
			"COMMITTEES",
			"STOCK CERTIFICATES AND TRANSFERS",
			"FISCAL YEAR",
			"INDEMNIFICATION",
			"AMENDMENTS",
		},
		Parties: "officers",
	},
	types.DocBusinessPolicies: {
		Fields: []field{
			required("business_name", "Business name"),
			required("state", "State"),
			optional("industry", "Industry"),
			number("employee_count", "Number of employees"),
			optional("remote_work_policy", "Remote work arrangement"),
			number("pto_days", "Paid time off days per year"),
			optionalList("additional_policies", "Additional policies"),
		},
		Outline: []string{
			"CODE OF CONDUCT",
			"EQUAL EMPLOYMENT OPPORTUNITY",
			"ANTI-HARASSMENT",
			"WORK HOURS AND ATTENDANCE",
			"COMPENSATION AND PAYROLL",
			"PAID TIME OFF",
			"REMOTE WORK",
			"CONFIDENTIALITY",
			"TECHNOLOGY AND DATA SECURITY",
			"DISCIPLINE AND TERMINATION",
		},
	},
	types.DocEINForm: {
		Fields: []field{
			required("legal_name", "Legal name of entity"),
			required("entity_type", "Type of entity"),
			required("state", "State of formation"),
			required("responsible_party", "Responsible party"),
			required("mailing_address", "Mailing address"),
			optional("trade_name", "Trade name"),
			number("members_count", "Number of members"),
			optional("reason_for_applying", "Reason for applying"),
			optional("start_date", "Business start date"),
			optional("fiscal_year_end", "Closing month of accounting year"),
			number("expected_employees", "Highest number of employees expected in the next 12 months"),
			optional("principal_activity", "Principal activity"),
		},
		Outline: []string{
			"ENTITY LEGAL NAME",
			"TRADE NAME",
			"MAILING ADDRESS",
			"RESPONSIBLE PARTY",
			"ENTITY TYPE",
			"STATE OF FORMATION",
			"REASON FOR APPLYING",
			"BUSINESS START DATE AND ACCOUNTING YEAR",
			"EMPLOYEES AND PRINCIPAL ACTIVITY",
		},
		Parties: "responsible_party",
	},
	types.DocBusinessPlan: {
		Fields: []field{
			required("business_name", "Business name"),
			required("industry", "Industry"),
			required("business_description", "Business description"),
			required("target_market", "Target market"),
			optionalList("products", "Products and services"),
			optionalList("competitors", "Competitors"),
			optional("marketing_strategy", "Marketing strategy"),
			optionalList("team", "Management team"),
			optional("funding_needed", "Funding needed"),
			optional("financial_projections", "Financial projections"),
		},
		Outline: []string{
			"EXECUTIVE SUMMARY",
			"COMPANY DESCRIPTION",
			"MARKET ANALYSIS",
			"COMPETITIVE LANDSCAPE",
			"PRODUCTS AND SERVICES",
			"MARKETING AND SALES STRATEGY",
			"OPERATIONS PLAN",
			"MANAGEMENT TEAM",
			"FINANCIAL PLAN",
		},
	},
	types.DocExecutiveSummary: {
		Fields: []field{
			required("business_name", "Business name"),
			required("mission", "Mission"),
			required("problem", "Problem"),
			required("solution", "Solution"),
			required("target_market", "Target market"),
			optional("business_model", "Business model"),
			optional("traction", "Traction to date"),
			optionalList("team", "Team"),
			optional("funding_ask", "Funding request"),
		},
		Outline: []string{
			"COMPANY OVERVIEW",
			"MISSION",
			"PROBLEM",
			"SOLUTION",
			"TARGET MARKET",
			"BUSINESS MODEL",
			"TRACTION",
			"FUNDING REQUEST",
		},
	},
	types.DocPitchDeck: {
		Fields: []field{
			required("business_name", "Business name"),
			required("problem", "Problem"),
			required("solution", "Solution"),
			required("market_size", "Market size"),
			optional("business_model", "Business model"),
			optional("traction", "Traction to date"),
			optionalList("competitors", "Competitors"),
			optionalList("team", "Team"),
			optional("funding_ask", "Funding ask"),
		},
		Outline: []string{
			"TITLE",
			"PROBLEM",
			"SOLUTION",
			"MARKET OPPORTUNITY",
			"PRODUCT",
			"BUSINESS MODEL",
			"TRACTION",
			"COMPETITION",
			"TEAM",
			"THE ASK",
		},
	},
	types.DocChartOfAccounts: {
		Fields: []field{
			required("business_name", "Business name"),
			required("industry", "Industry"),
			optional("entity_type", "Entity type"),
			optionalList("revenue_streams", "Revenue streams"),
			optional("accounting_method", "Accounting method"),
		},
		Outline: []string{"ASSETS", "LIABILITIES", "EQUITY", "REVENUE", "COST OF GOODS SOLD", "EXPENSES"},
		Columns: []string{"Account Number", "Account Name", "Account Type", "Detail Type", "Description"},
	},
	types.DocExpenseTracker: {
		Fields: []field{
			required("business_name", "Business name"),
			optionalList("categories", "Expense categories"),
			number("monthly_budget", "Monthly budget"),
			optional("period", "Tracking period"),
			optionalList("payment_methods", "Payment methods"),
		},
		Outline: []string{
			"RENT AND UTILITIES",
			"PAYROLL",
			"SOFTWARE AND SUBSCRIPTIONS",
			"MARKETING",
			"TRAVEL",
			"OFFICE SUPPLIES",
			"PROFESSIONAL SERVICES",
			"INSURANCE",
			"TAXES AND FEES",
			"MISCELLANEOUS",
		},
		Columns: []string{"Date", "Category", "Vendor", "Description", "Payment Method", "Amount", "Budgeted Amount", "Notes"},
	},
	types.DocLeanCanvas: {
		Fields: []field{
			required("business_name", "Business name"),
			required("problem", "Problem"),
			required("customer_segments", "Customer segments"),
			optional("solution", "Solution"),
			optional("unique_value_proposition", "Unique value proposition"),
			optional("channels", "Channels"),
			optional("revenue_streams", "Revenue streams"),
			optional("cost_structure", "Cost structure"),
			optional("key_metrics", "Key metrics"),
			optional("unfair_advantage", "Unfair advantage"),
		},
		Outline: []string{
			"PROBLEM",
			"CUSTOMER SEGMENTS",
			"UNIQUE VALUE PROPOSITION",
			"SOLUTION",
			"CHANNELS",
			"REVENUE STREAMS",
			"COST STRUCTURE",
			"KEY METRICS",
			"UNFAIR ADVANTAGE",
		},
		Keys: []string{
			"problem",
			"customer_segments",
			"unique_value_proposition",
			"solution",
			"channels",
			"revenue_streams",
			"cost_structure",
			"key_metrics",
			"unfair_advantage",
		},
	},
	types.DocSocialCalendar: {
		Fields: []field{
			required("business_name", "Business name"),
			list("platforms", "Platforms"),
			optional("target_audience", "Target audience"),
			optionalList("content_themes", "Content themes"),
			optional("posting_frequency", "Posting frequency"),
		},
		Outline: []string{"CONTENT PILLARS", "WEEKLY POSTING PLAN", "HASHTAG STRATEGY", "ENGAGEMENT TACTICS"},
		Keys:    []string{"content_pillars", "weeks", "hashtag_strategy", "engagement_tactics"},
	},
	types.DocStartupChecklist: {
		Fields: []field{
			required("business_name", "Business name"),
			required("state", "State"),
			optional("entity_type", "Entity type"),
			optional("industry", "Industry"),
			optional("stage", "Current stage"),
			optional("launch_date", "Target launch date"),
		},
		Outline: []string{
			"IDEA VALIDATION",
			"BUSINESS PLANNING",
			"LEGAL FORMATION",
			"FEDERAL AND STATE REGISTRATIONS",
			"BANKING AND FINANCE",
			"LICENSES AND PERMITS",
			"INSURANCE",
			"BRAND AND ONLINE PRESENCE",
			"LAUNCH",
		},
		Keys: []string{"phases"},
	},
	types.DocEmailSeries: {
		Fields: []field{
			required("business_name", "Business name"),
			required("audience", "Audience"),
			required("goal", "Goal of the series"),
			optional("product", "Product or service"),
			optional("tone", "Tone"),
		},
		Outline: []string{
			"EMAIL 1 WELCOME",
			"EMAIL 2 OUR STORY",
			"EMAIL 3 VALUE AND EDUCATION",
			"EMAIL 4 SOCIAL PROOF",
			"EMAIL 5 OFFER",
		},
	},
	types.DocEmailCampaign: {
		Fields: []field{
			required("business_name", "Business name"),
			required("campaign_goal", "Campaign goal"),
			required("audience", "Audience"),
			optional("offer", "Offer"),
			optional("tone", "Tone"),
			optional("send_date", "Send date"),
		},
		Outline: []string{
			"CAMPAIGN OVERVIEW",
			"SUBJECT LINES",
			"PREVIEW TEXT",
			"EMAIL BODY",
			"CALL TO ACTION",
			"FOLLOW-UP EMAIL",
		},
	},
	types.DocSalesScripts: {
		Fields: []field{
			required("business_name", "Business name"),
			required("product", "Product or service"),
			required("audience", "Audience"),
			optional("channel", "Channel"),
			optionalList("objections", "Common objections"),
			optional("tone", "Tone"),
		},
		Outline: []string{
			"OPENING",
			"DISCOVERY QUESTIONS",
			"VALUE PITCH",
			"OBJECTION HANDLING",
			"CLOSING",
			"FOLLOW-UP",
		},
	},
}

// Outline returns the fixed section outline of a document type
func Outline(dt types.DocumentType) []string {
	return append([]string(nil), documents[dt].Outline...)
}

// Columns returns the header row of a tabular document type, or nil
func Columns(dt types.DocumentType) []string {
	return append([]string(nil), documents[dt].Columns...)
}

// KeyOrder returns the top-level response keys of a structured document type, or nil
func KeyOrder(dt types.DocumentType) []string {
	return append([]string(nil), documents[dt].Keys...)
}

// FieldNames returns the declared questionnaire fields of a document type and which are required
func FieldNames(dt types.DocumentType) (all []string, requiredFields []string) {
	for _, f := range documents[dt].Fields {
		all = append(all, f.Name)
		if strings.HasPrefix(f.Rules, "required") {
			requiredFields = append(requiredFields, f.Name)
		}
	}
	return all, requiredFields
}
