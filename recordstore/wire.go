package recordstore

import (
	"github.com/canopyhq/canopy-chat-server/models"
)

// wireConsultant mirrors the snake_case consultant shape the record
// store serves, keeping store naming quirks out of the model type.
type wireConsultant struct {
	ConsultantID           string  `json:"consultant_id"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	Phone                  string  `json:"phone"`
	Title                  string  `json:"title"`
	Location               string  `json:"location"`
	PracticeArea           string  `json:"practice_area"`
	ConsultantStatus       string  `json:"consultant_status"`
	BusinessStrategySkills string  `json:"business_strategy_skills"`
	FinanceSkills          string  `json:"finance_skills"`
	LawSkills              string  `json:"law_skills"`
	MarketingPRSkills      string  `json:"marketing_pr_skills"`
	NonprofitSkills        string  `json:"nonprofit_skills"`
	ProfessionalPassion    string  `json:"professional_passion"`
	ProjectsExcite         string  `json:"projects_excite"`
	Description            string  `json:"description"`
	Keywords               string  `json:"keywords"`
	HourlyRateLow          string  `json:"hourly_rate_low"`
	HourlyRateHigh         string  `json:"hourly_rate_high"`
	SimilarityScore        float64 `json:"similarity_score"`
}

func (w wireConsultant) toModel() models.Consultant {
	return models.Consultant{
		ID:                     w.ConsultantID,
		Name:                   w.Name,
		Email:                  w.Email,
		Phone:                  w.Phone,
		Title:                  w.Title,
		Location:               w.Location,
		PracticeArea:           w.PracticeArea,
		Status:                 w.ConsultantStatus,
		BusinessStrategySkills: w.BusinessStrategySkills,
		FinanceSkills:          w.FinanceSkills,
		LawSkills:              w.LawSkills,
		MarketingPRSkills:      w.MarketingPRSkills,
		NonprofitSkills:        w.NonprofitSkills,
		ProfessionalPassion:    w.ProfessionalPassion,
		ProjectsExcite:         w.ProjectsExcite,
		Description:            w.Description,
		Keywords:               w.Keywords,
		HourlyRateLow:          w.HourlyRateLow,
		HourlyRateHigh:         w.HourlyRateHigh,
		Similarity:             w.SimilarityScore,
	}
}
