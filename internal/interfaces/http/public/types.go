package public

import (
	"time"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

type catalogSummaryResponse struct {
	Key               string `json:"key"`
	Title             string `json:"title"`
	Locale            string `json:"locale,omitempty"`
	AnswerMode        string `json:"answerMode"`
	QuestionCount     int    `json:"questionCount"`
	MaxScore          int    `json:"maxScore"`
	CollectRespondent bool   `json:"collectRespondent"`
}

type catalogListResponse struct {
	Items          []catalogSummaryResponse `json:"items"`
	DefaultCatalog string                   `json:"defaultCatalog"`
}

type submissionResponse struct {
	ID             string    `json:"id"`
	Catalog        string    `json:"catalog"`
	Score          int       `json:"score"`
	MaxScore       int       `json:"maxScore"`
	Tier           string    `json:"tier"`
	Recommendation string    `json:"recommendation"`
	FollowUp       string    `json:"followUp"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func buildCatalogSummary(c domain.Catalog) catalogSummaryResponse {
	return catalogSummaryResponse{
		Key:               c.Key,
		Title:             c.Title,
		Locale:            c.Locale,
		AnswerMode:        string(c.AnswerMode),
		QuestionCount:     len(c.Questions),
		MaxScore:          c.MaxScore(),
		CollectRespondent: c.CollectRespondent,
	}
}

func buildSubmissionResponse(c domain.Catalog, s domain.Submission) submissionResponse {
	return submissionResponse{
		ID:             s.ID,
		Catalog:        s.CatalogKey,
		Score:          s.Evaluation.Score,
		MaxScore:       c.MaxScore(),
		Tier:           s.Evaluation.TierLabel(),
		Recommendation: s.Evaluation.Recommendation,
		FollowUp:       s.Evaluation.FollowUp,
		SubmittedAt:    s.SubmittedAt,
	}
}
