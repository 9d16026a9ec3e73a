package domain

import dErrors "carevault/pkg/domain-errors"

// Scope is a data category a consent may cover.
// Invariant: the value must be one of the supported scopes.
//
// Usage: construct via ParseScope at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Scope string

// Supported scopes.
const (
	ScopeDocuments Scope = "documents"
	ScopeEmergency Scope = "emergency"
	ScopeInsights  Scope = "insights"
	ScopeTimeline  Scope = "timeline"
)

// validScopes is the single source of truth for valid scopes.
var validScopes = map[Scope]bool{
	ScopeDocuments: true,
	ScopeEmergency: true,
	ScopeInsights:  true,
	ScopeTimeline:  true,
}

// ParseScope constructs a Scope from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "scope cannot be empty")
	}
	sc := Scope(s)
	if !sc.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid scope: "+s)
	}
	return sc, nil
}

// ParseScopes constructs a scope set from external input. The set must be
// non-empty; duplicates are collapsed.
func ParseScopes(raw []string) ([]Scope, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "scopes must not be empty")
	}
	seen := make(map[Scope]bool, len(raw))
	scopes := make([]Scope, 0, len(raw))
	for _, s := range raw {
		sc, err := ParseScope(s)
		if err != nil {
			return nil, err
		}
		if seen[sc] {
			continue
		}
		seen[sc] = true
		scopes = append(scopes, sc)
	}
	return scopes, nil
}

// IsValid checks if the scope is one of the supported enum values.
func (s Scope) IsValid() bool {
	return validScopes[s]
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// ScopesPermit decides whether a granted scope set covers a requested data
// category. The documents category is also satisfied by the timeline scope:
// the timeline is a restricted view over the same underlying documents. Every
// other category requires exact membership. No category is permitted by
// default.
func ScopesPermit(granted []Scope, requested Scope) bool {
	for _, s := range granted {
		if s == requested {
			return true
		}
		if requested == ScopeDocuments && s == ScopeTimeline {
			return true
		}
	}
	return false
}
