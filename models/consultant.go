package models

import (
	"fmt"
	"strings"
)

// Consultant statuses as stored in the record store.
const (
	StatusActive    = "Active"
	StatusInVetting = "In Vetting"
)

// Consultant is a profile retrieved from the consultant record store.
// Name is always present; every other field is optional and an empty
// value means "not on file", never an error.
type Consultant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Title        string `json:"title,omitempty"`
	Location     string `json:"location,omitempty"`
	PracticeArea string `json:"practiceArea,omitempty"`
	Status       string `json:"consultantStatus,omitempty"`

	// Free-text skill blobs, one per practice domain.
	BusinessStrategySkills string `json:"businessStrategySkills,omitempty"`
	FinanceSkills          string `json:"financeSkills,omitempty"`
	LawSkills              string `json:"lawSkills,omitempty"`
	MarketingPRSkills      string `json:"marketingPrSkills,omitempty"`
	NonprofitSkills        string `json:"nonprofitSkills,omitempty"`

	ProfessionalPassion string `json:"professionalPassion,omitempty"`
	ProjectsExcite      string `json:"projectsExcite,omitempty"`
	Description         string `json:"description,omitempty"`
	Keywords            string `json:"keywords,omitempty"`

	// Hourly rates are stored as numeric strings in the record store.
	HourlyRateLow  string `json:"hourlyRateLow,omitempty"`
	HourlyRateHigh string `json:"hourlyRateHigh,omitempty"`

	// Similarity is a relevance score in [0,1] attached to search
	// results only. It is never persisted.
	Similarity float64 `json:"similarity,omitempty"`
}

// Initials returns up to two uppercase initials derived from Name,
// used for avatar placeholders.
func (c *Consultant) Initials() string {
	words := strings.Fields(c.Name)
	if len(words) > 2 {
		words = words[:2]
	}
	var b strings.Builder
	for _, w := range words {
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}

// RateDisplay renders the hourly rate range for presentation. The
// fallback text is display-only and never written back into the record.
func (c *Consultant) RateDisplay() string {
	if c.HourlyRateLow == "" {
		return "Rate not specified"
	}
	return fmt.Sprintf("$%s-%s/hr", c.HourlyRateLow, c.HourlyRateHigh)
}

// CombinedSkills joins the non-empty per-domain skill blobs into a
// single display string.
func (c *Consultant) CombinedSkills() string {
	all := []string{
		c.BusinessStrategySkills,
		c.FinanceSkills,
		c.LawSkills,
		c.MarketingPRSkills,
		c.NonprofitSkills,
	}
	present := make([]string, 0, len(all))
	for _, s := range all {
		if s != "" {
			present = append(present, s)
		}
	}
	return strings.Join(present, ", ")
}

// IsActive reports whether the consultant is currently accepting work.
func (c *Consultant) IsActive() bool {
	return c.Status == StatusActive
}
