package outreach

import (
	"fmt"
	"strings"
	"time"
)

// FallbackInstitutionName is used when a row carries no organisation name.
const FallbackInstitutionName = "Unknown Institution"

type Institution struct {
	ID                 string
	LegalName          string
	TradingName        string
	RegistrationNumber string
	CreatedAt          time.Time
}

type Invitation struct {
	ID            string
	Email         string
	InstitutionID string
	Role          string
	Token         string
	Status        string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

const InvitationStatusPending = "PENDING"

// InstitutionDisplayName returns the raw name or the fallback placeholder.
func InstitutionDisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return FallbackInstitutionName
	}
	return name
}

// PlaceholderRegistrationNumber builds the registration number assigned to
// auto-created institutions. suffix should be random.
func PlaceholderRegistrationNumber(now time.Time, suffix string) string {
	return fmt.Sprintf("AUTO-%d-%s", now.Unix(), strings.ToUpper(suffix))
}
