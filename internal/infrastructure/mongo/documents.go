package mongo

import (
	"time"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

// CatalogDocument は catalogs コレクションに保存する診断カタログ。
type CatalogDocument struct {
	Key               string             `bson:"_id"`
	Title             string             `bson:"title"`
	Locale            string             `bson:"locale,omitempty"`
	AnswerMode        string             `bson:"answerMode"`
	CollectRespondent bool               `bson:"collectRespondent"`
	Questions         []QuestionDocument `bson:"questions"`
	Tiers             []TierDocument     `bson:"tiers"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

type QuestionDocument struct {
	Prompt  string           `bson:"prompt"`
	Options []OptionDocument `bson:"options"`
}

type OptionDocument struct {
	Label string `bson:"label"`
	Score int    `bson:"score"`
}

type TierDocument struct {
	MinScore       int    `bson:"minScore"`
	MaxScore       int    `bson:"maxScore"`
	Recommendation string `bson:"recommendation"`
	FollowUp       string `bson:"followUp"`
}

// SubmissionDocument は submissions コレクションへ追記する 1 行分の回答結果。
type SubmissionDocument struct {
	ID             string    `bson:"_id"`
	CatalogKey     string    `bson:"catalog"`
	SubmittedAt    time.Time `bson:"submittedAt"`
	Timestamp      string    `bson:"timestamp"`
	Name           string    `bson:"name,omitempty"`
	Email          string    `bson:"email,omitempty"`
	CompanyName    string    `bson:"companyName,omitempty"`
	Industry       string    `bson:"industry,omitempty"`
	Employees      string    `bson:"employees,omitempty"`
	Role           string    `bson:"role,omitempty"`
	Score          int       `bson:"score"`
	Recommendation string    `bson:"recommendation"`
	FollowUp       string    `bson:"followUp"`
}

func mapCatalogDocument(doc CatalogDocument) domain.Catalog {
	questions := make([]domain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		options := make([]domain.Option, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, domain.Option{Label: o.Label, Score: o.Score})
		}
		questions = append(questions, domain.Question{Prompt: q.Prompt, Options: options})
	}
	tiers := make([]domain.Tier, 0, len(doc.Tiers))
	for _, t := range doc.Tiers {
		tiers = append(tiers, domain.Tier{
			MinScore:       t.MinScore,
			MaxScore:       t.MaxScore,
			Recommendation: t.Recommendation,
			FollowUp:       t.FollowUp,
		})
	}
	return domain.Catalog{
		Key:               doc.Key,
		Title:             doc.Title,
		Locale:            doc.Locale,
		AnswerMode:        domain.AnswerMode(doc.AnswerMode),
		CollectRespondent: doc.CollectRespondent,
		Questions:         questions,
		Tiers:             tiers,
	}
}

func newCatalogDocument(c domain.Catalog, now time.Time) CatalogDocument {
	questions := make([]QuestionDocument, 0, len(c.Questions))
	for _, q := range c.Questions {
		options := make([]OptionDocument, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, OptionDocument{Label: o.Label, Score: o.Score})
		}
		questions = append(questions, QuestionDocument{Prompt: q.Prompt, Options: options})
	}
	tiers := make([]TierDocument, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, TierDocument{
			MinScore:       t.MinScore,
			MaxScore:       t.MaxScore,
			Recommendation: t.Recommendation,
			FollowUp:       t.FollowUp,
		})
	}
	return CatalogDocument{
		Key:               c.Key,
		Title:             c.Title,
		Locale:            c.Locale,
		AnswerMode:        string(c.AnswerMode),
		CollectRespondent: c.CollectRespondent,
		Questions:         questions,
		Tiers:             tiers,
		UpdatedAt:         now,
	}
}

func newSubmissionDocument(row domain.SubmissionRow) SubmissionDocument {
	return SubmissionDocument{
		ID:             row.ID,
		CatalogKey:     row.CatalogKey,
		SubmittedAt:    row.SubmittedAt,
		Timestamp:      row.Timestamp(),
		Name:           row.Name,
		Email:          row.Email,
		CompanyName:    row.CompanyName,
		Industry:       row.Industry,
		Employees:      row.Employees,
		Role:           row.Role,
		Score:          row.Score,
		Recommendation: row.Recommendation,
		FollowUp:       row.FollowUp,
	}
}
