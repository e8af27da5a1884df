// Package entitlement decides whether a requester may view or generate a document type.
// Resolve is a pure function of its inputs: the tier and account age are passed in,
// never read from session state.
package entitlement

import (
	"fmt"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/types"
)

// Action is what the requester wants to do with a document type
type Action string

// Actions
const (
	// ActionTemplate is the free, static, non-generated template view
	ActionTemplate Action = "template"
	// ActionGenerate drafts the document with the oracle
	ActionGenerate Action = "generate"
)

// ParseAction parses an action name
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionTemplate, ActionGenerate:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action: %q", s)
	}
}

// DenialKind classifies a denied decision
type DenialKind string

// Denial kinds
const (
	// DenialEntitlement means the tier is below the document's required tier
	DenialEntitlement DenialKind = "entitlement"
	// DenialEligibility means the tier suffices but a document-specific rule failed
	DenialEligibility DenialKind = "eligibility"
)

// MinEINAccountAgeDays is the account age required before an EIN worksheet can be generated
const MinEINAccountAgeDays = 5

// Decision is the outcome of an entitlement check. A denial is a normal result, not an error.
type Decision struct {
	DocumentType   types.DocumentType `json:"document_type"`
	Action         Action             `json:"action"`
	Allowed        bool               `json:"allowed"`
	Reason         string             `json:"reason,omitempty"`
	Denial         DenialKind         `json:"denial,omitempty"`
	RequiredTier   types.Tier         `json:"required_tier"`
	RetryAfterDays int                `json:"retry_after_days,omitempty"`
}

// eligibilityRule runs only once the requester's tier is sufficient
type eligibilityRule func(requester types.Requester) (ok bool, reason string, retryAfterDays int)

var eligibilityRules = map[types.DocumentType]eligibilityRule{
	types.DocEINForm: minimumAccountAge(MinEINAccountAgeDays),
}

// minimumAccountAge blocks subscribe-generate-cancel arbitrage on one-time filings
func minimumAccountAge(days int) eligibilityRule {
	return func(r types.Requester) (bool, string, int) {
		if r.AccountAgeDays >= days {
			return true, "", 0
		}
		remaining := days - r.AccountAgeDays
		return false, fmt.Sprintf(
			"account must be at least %d days old to generate this document; it is %d days old, please try again in %d %s",
			days, r.AccountAgeDays, remaining, pluralDays(remaining),
		), remaining
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// RequiredTier returns the tier needed to generate a document type
func RequiredTier(documentType types.DocumentType) (types.Tier, error) {
	e, err := catalog.Get(documentType)
	if err != nil {
		return "", err
	}
	return e.RequiredTier, nil
}

// Resolve decides whether requester may perform action on documentType.
// It returns an error only for malformed input.
func Resolve(documentType types.DocumentType, action Action, requester types.Requester) (Decision, error) {
	required, err := RequiredTier(documentType)
	if err != nil {
		return Decision{}, err
	}

	decision := Decision{
		DocumentType: documentType,
		Action:       action,
		RequiredTier: required,
	}

	switch action {
	case ActionTemplate:
		decision.Allowed = true
		return decision, nil
	case ActionGenerate:
	default:
		return Decision{}, fmt.Errorf("unknown action: %q", action)
	}

	if !requester.Tier.AtLeast(required) {
		decision.Denial = DenialEntitlement
		decision.Reason = fmt.Sprintf("%s requires the %s plan; current plan is %s",
			labelOf(documentType), required.Label(), tierLabel(requester.Tier))
		return decision, nil
	}

	if rule, ok := eligibilityRules[documentType]; ok {
		allowed, reason, retry := rule(requester)
		if !allowed {
			decision.Denial = DenialEligibility
			decision.Reason = reason
			decision.RetryAfterDays = retry
			return decision, nil
		}
	}

	decision.Allowed = true
	return decision, nil
}

// ResolveAll returns template and generate decisions for every catalog row
func ResolveAll(requester types.Requester) []Decision {
	out := make([]Decision, 0, 2*len(types.AllDocumentTypes))
	for _, dt := range types.AllDocumentTypes {
		for _, action := range []Action{ActionTemplate, ActionGenerate} {
			// catalog rows and actions are fixed, so Resolve cannot fail here
			d, _ := Resolve(dt, action, requester)
			out = append(out, d)
		}
	}
	return out
}

func labelOf(dt types.DocumentType) string {
	if e, ok := catalog.Lookup(dt); ok {
		return e.Label
	}
	return string(dt)
}

func tierLabel(t types.Tier) string {
	if t == "" {
		return "none"
	}
	return t.Label()
}
