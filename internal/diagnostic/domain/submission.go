package domain

import (
	"strconv"
	"time"
)

// TimestampLayout formats the timestamp column of a persisted row.
const TimestampLayout = "2006-01-02 15:04:05"

// RowHeader names the columns produced by SubmissionRow.Values.
var RowHeader = []string{
	"timestamp", "name", "email", "company_name", "industry",
	"employees", "role", "score", "recommendation", "follow_up",
}

// ScoreColumn is the position of the score in RowHeader.
const ScoreColumn = 7

// Respondent holds the optional identity fields of a submission.
type Respondent struct {
	Name        string
	Email       string
	CompanyName string
	Industry    string
	Employees   string
	Role        string
}

// Submission is one evaluated questionnaire response.
type Submission struct {
	ID          string
	CatalogKey  string
	Respondent  Respondent
	Evaluation  Evaluation
	SubmittedAt time.Time
}

// Row flattens the submission for a row-oriented sink.
func (s Submission) Row() SubmissionRow {
	return SubmissionRow{
		ID:             s.ID,
		CatalogKey:     s.CatalogKey,
		SubmittedAt:    s.SubmittedAt,
		Name:           s.Respondent.Name,
		Email:          s.Respondent.Email,
		CompanyName:    s.Respondent.CompanyName,
		Industry:       s.Respondent.Industry,
		Employees:      s.Respondent.Employees,
		Role:           s.Respondent.Role,
		Score:          s.Evaluation.Score,
		Recommendation: s.Evaluation.Recommendation,
		FollowUp:       s.Evaluation.FollowUp,
	}
}

// SubmissionRow is the flat record handed to a sink.
// ID and CatalogKey are carried for sinks with named columns; Values omits them.
type SubmissionRow struct {
	ID             string    `json:"id"`
	CatalogKey     string    `json:"catalog"`
	SubmittedAt    time.Time `json:"submittedAt"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CompanyName    string    `json:"companyName"`
	Industry       string    `json:"industry"`
	Employees      string    `json:"employees"`
	Role           string    `json:"role"`
	Score          int       `json:"score"`
	Recommendation string    `json:"recommendation"`
	FollowUp       string    `json:"followUp"`
}

// Timestamp formats SubmittedAt with TimestampLayout.
func (r SubmissionRow) Timestamp() string {
	return r.SubmittedAt.Format(TimestampLayout)
}

// Values returns the row in RowHeader order.
func (r SubmissionRow) Values() []string {
	return []string{
		r.Timestamp(),
		r.Name,
		r.Email,
		r.CompanyName,
		r.Industry,
		r.Employees,
		r.Role,
		strconv.Itoa(r.Score),
		r.Recommendation,
		r.FollowUp,
	}
}
