package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type PolicyStatus string

const (
	PolicyActive    PolicyStatus = "Activa"
	PolicyExpired   PolicyStatus = "Vencida"
	PolicySuspended PolicyStatus = "Suspendida"
)

var ValidPolicyStatuses = []PolicyStatus{PolicyActive, PolicyExpired, PolicySuspended}

type ClaimStatus string

const (
	ClaimOpen        ClaimStatus = "Abierto"
	ClaimClosed      ClaimStatus = "Cerrado"
	ClaimUnderReview ClaimStatus = "En Evaluación"
)

var ValidClaimStatuses = []ClaimStatus{ClaimOpen, ClaimClosed, ClaimUnderReview}

// Lower-case literals the reports match case-insensitively against stored
// values. Writes title-case instead; the two rules are kept apart on purpose
// because rows loaded in bulk are not normalized.
const (
	MatchPolicyActive    = "activa"
	MatchPolicyExpired   = "vencida"
	MatchPolicySuspended = "suspendida"
	MatchClaimOpen       = "abierto"
	MatchClaimAccident   = "accidente"
)

// TitleCase trims s and upper-cases the first letter of each word.
func TitleCase(s string) string {
	// cases.Caser keeps state between calls and is not shared.
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

func ParsePolicyStatus(raw string) (PolicyStatus, error) {
	normalized := PolicyStatus(TitleCase(raw))
	for _, status := range ValidPolicyStatuses {
		if normalized == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q, valid values are %s", ErrInvalidStatus, raw, joinStatuses(ValidPolicyStatuses))
}

func ParseClaimStatus(raw string) (ClaimStatus, error) {
	normalized := ClaimStatus(TitleCase(raw))
	for _, status := range ValidClaimStatuses {
		if normalized == status {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q, valid values are %s", ErrInvalidStatus, raw, joinStatuses(ValidClaimStatuses))
}

func joinStatuses[S ~string](statuses []S) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, ", ")
}

// DateLayout is the day/month/year textual form used on the wire and in the
// primary store. Parsing also accepts non-padded days and months.
const (
	DateLayout      = "02/01/2006"
	dateParseLayout = "2/1/2006"
)

// ParseDate parses a day/month/year date at local midnight.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateParseLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected DD/MM/YYYY", ErrInvalidDate, raw)
	}
	return t, nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
