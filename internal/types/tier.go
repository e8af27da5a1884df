// Package types provides type definitions for structured data used throughout the formation-kit system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// Tier is a subscription level gating feature access.
type Tier string

// Tier constants, ordered free < pro < premium
const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// AllTiers lists every tier in ascending order
var AllTiers = []Tier{TierFree, TierPro, TierPremium}

// Rank returns the position of the tier in the total order, or -1 for an unknown tier.
func (t Tier) Rank() int {
	switch t {
	case TierFree:
		return 0
	case TierPro:
		return 1
	case TierPremium:
		return 2
	default:
		return -1
	}
}

// AtLeast reports whether t is greater than or equal to other.
// Unknown tiers never satisfy any requirement.
func (t Tier) AtLeast(other Tier) bool {
	if t.Rank() < 0 || other.Rank() < 0 {
		return false
	}
	return t.Rank() >= other.Rank()
}

// Valid reports whether t is one of the known tiers
func (t Tier) Valid() bool {
	return t.Rank() >= 0
}

// Label returns the display name of the tier
func (t Tier) Label() string {
	switch t {
	case TierFree:
		return "Free"
	case TierPro:
		return "Pro"
	case TierPremium:
		return "Premium"
	default:
		return string(t)
	}
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier: %q", s)
	}
	return t, nil
}
