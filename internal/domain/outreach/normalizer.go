package outreach

import (
	"regexp"
	"strings"
)

type ColumnField string

const (
	ColumnFieldEmail        ColumnField = "email"
	ColumnFieldOrganization ColumnField = "organization"
)

// ColumnRule assigns a header label to a field when the lower-cased label
// contains any of Substrings. Rules are evaluated in slice order and the
// first match claims the label.
type ColumnRule struct {
	Field      ColumnField
	Substrings []string
}

func (r ColumnRule) Matches(label string) bool {
	l := strings.ToLower(label)
	for _, sub := range r.Substrings {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}

var DefaultColumnRules = []ColumnRule{
	{Field: ColumnFieldEmail, Substrings: []string{"mail"}},
	{Field: ColumnFieldOrganization, Substrings: []string{"org", "company", "institution", "provider", "name"}},
}

var (
	emailSeparators = regexp.MustCompile(`[;,\s]+`)
	emailShape      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

type EmailCandidate struct {
	Raw        string
	Normalized string
}

type NormalizedRow struct {
	RowNumber       int
	Emails          []EmailCandidate
	InstitutionName string
	// AmbiguousLabels lists labels matched by more than one rule.
	AmbiguousLabels []string
}

type Normalizer struct {
	rules []ColumnRule
}

func NewNormalizer(rules []ColumnRule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultColumnRules
	}
	return &Normalizer{rules: rules}
}

// Classify returns the field claimed by label and whether more than one rule matched it.
func (n *Normalizer) Classify(label string) (ColumnField, bool) {
	var field ColumnField
	matches := 0
	for _, rule := range n.rules {
		if !rule.Matches(label) {
			continue
		}
		if matches == 0 {
			field = rule.Field
		}
		matches++
	}
	return field, matches > 1
}

func (n *Normalizer) Normalize(row Row) NormalizedRow {
	out := NormalizedRow{RowNumber: row.Number}
	seen := make(map[string]struct{})

	for _, label := range row.Labels {
		value := row.Values[label]

		field, ambiguous := n.Classify(label)
		if ambiguous {
			out.AmbiguousLabels = append(out.AmbiguousLabels, label)
		}
		if field == ColumnFieldOrganization && out.InstitutionName == "" {
			out.InstitutionName = strings.TrimSpace(value)
		}

		if !strings.Contains(value, "@") {
			continue
		}
		for _, candidate := range ExtractEmails(value) {
			if _, dup := seen[candidate.Normalized]; dup {
				continue
			}
			seen[candidate.Normalized] = struct{}{}
			out.Emails = append(out.Emails, candidate)
		}
	}

	return out
}

// ExtractEmails splits a cell on separators and keeps tokens shaped like an email.
func ExtractEmails(value string) []EmailCandidate {
	var out []EmailCandidate
	for _, token := range emailSeparators.Split(value, -1) {
		raw := strings.TrimRight(strings.TrimSpace(token), ";,.")
		if raw == "" {
			continue
		}
		normalized := NormalizeEmail(raw)
		if !emailShape.MatchString(normalized) {
			continue
		}
		out = append(out, EmailCandidate{Raw: raw, Normalized: normalized})
	}
	return out
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), ";,."))
}
