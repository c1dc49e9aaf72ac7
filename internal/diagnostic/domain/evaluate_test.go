package domain

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fourTiers() []Tier {
	return []Tier{
		{MinScore: 0, MaxScore: 24, Recommendation: "early", FollowUp: "foundational"},
		{MinScore: 25, MaxScore: 39, Recommendation: "in progress", FollowUp: "tailored"},
		{MinScore: 40, MaxScore: 54, Recommendation: "solid", FollowUp: "optimize"},
		{MinScore: 55, MaxScore: 60, Recommendation: "excellent", FollowUp: "advanced"},
	}
}

func threeQuestionCatalog(mode AnswerMode) Catalog {
	return Catalog{
		Key:        "test",
		AnswerMode: mode,
		Questions: []Question{
			{Prompt: "strategy", Options: []Option{{"full", 5}, {"partial", 3}, {"none", 0}}},
			{Prompt: "leadership", Options: []Option{{"high", 5}, {"moderate", 3}, {"slight", 2}, {"none", 0}}},
			{Prompt: "team", Options: []Option{{"dedicated", 50}, {"shared", 10}, {"none", 25}}},
		},
		Tiers: fourTiers(),
	}
}

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		want    string
		matched bool
	}{
		{"lower bound of first tier", 0, "early", true},
		{"upper boundary stays in lower tier", 24, "early", true},
		{"next boundary moves up", 25, "in progress", true},
		{"inside second tier", 30, "in progress", true},
		{"top of range", 60, "excellent", true},
		{"above max falls through", 61, "", false},
		{"negative falls through", -1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, ok := ResolveTier(tt.score, fourTiers())
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, tier.Recommendation)
		})
	}
}

func TestResolveTier_FirstMatchWinsOnOverlap(t *testing.T) {
	tiers := []Tier{
		{MinScore: 10, MaxScore: 30, Recommendation: "first"},
		{MinScore: 20, MaxScore: 40, Recommendation: "second"},
	}

	tier, ok := ResolveTier(25, tiers)
	require.True(t, ok)
	assert.Equal(t, "first", tier.Recommendation)

	tier, ok = ResolveTier(35, tiers)
	require.True(t, ok)
	assert.Equal(t, "second", tier.Recommendation)
}

func TestRecommend_GapUsesDefaults(t *testing.T) {
	tiers := []Tier{
		{MinScore: 0, MaxScore: 10, Recommendation: "low", FollowUp: "low follow"},
		{MinScore: 15, MaxScore: 20, Recommendation: "high", FollowUp: "high follow"},
	}

	rec, follow := Recommend(12, tiers)
	assert.Equal(t, DefaultRecommendation, rec)
	assert.Equal(t, DefaultFollowUp, follow)

	rec, follow = Recommend(61, fourTiers())
	assert.Equal(t, "No recommendation found.", rec)
	assert.Equal(t, "No follow-up actions available.", follow)

	rec, follow = Recommend(15, tiers)
	assert.Equal(t, "high", rec)
	assert.Equal(t, "high follow", follow)
}

func TestCatalog_Score_ScoreMode(t *testing.T) {
	c := threeQuestionCatalog(AnswerModeScore)

	score, err := c.Score(Answers{0: "5", 1: "5", 2: "50"})
	require.NoError(t, err)
	assert.Equal(t, 60, score)
	assert.Equal(t, c.MaxScore(), score)

	score, err = c.Score(Answers{0: " 3 ", 1: "2", 2: "25"})
	require.NoError(t, err)
	assert.Equal(t, 30, score)
}

func TestCatalog_Score_IndexMode(t *testing.T) {
	c := threeQuestionCatalog(AnswerModeIndex)

	for a := range c.Questions[0].Options {
		for b := range c.Questions[1].Options {
			for d := range c.Questions[2].Options {
				want := c.Questions[0].Options[a].Score + c.Questions[1].Options[b].Score + c.Questions[2].Options[d].Score
				got, err := c.Score(Answers{0: strconv.Itoa(a), 1: strconv.Itoa(b), 2: strconv.Itoa(d)})
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		}
	}
}

func TestCatalog_Score_Errors(t *testing.T) {
	c := threeQuestionCatalog(AnswerModeIndex)

	t.Run("missing answer", func(t *testing.T) {
		_, err := c.Score(Answers{0: "0", 1: "0"})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Question)
		assert.True(t, errors.Is(err, ErrMissingAnswer))
	})

	t.Run("blank answer", func(t *testing.T) {
		_, err := c.Score(Answers{0: "  ", 1: "0", 2: "0"})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 0, perr.Question)
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := c.Score(Answers{0: "0", 1: "abc", 2: "0"})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 1, perr.Question)
		assert.Equal(t, "abc", perr.Value)
		assert.Contains(t, err.Error(), "question_1")
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := c.Score(Answers{0: "3", 1: "0", 2: "0"})
		var serr *SelectionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, 0, serr.Question)
		assert.Equal(t, 3, serr.Options)
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := c.Score(Answers{0: "0", 1: "-1", 2: "0"})
		var serr *SelectionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, 1, serr.Question)
	})

	t.Run("score not offered", func(t *testing.T) {
		sc := threeQuestionCatalog(AnswerModeScore)
		_, err := sc.Score(Answers{0: "4", 1: "5", 2: "50"})
		var serr *SelectionError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, AnswerModeScore, serr.Mode)
		assert.Contains(t, err.Error(), "does not match")
	})
}

func TestCatalog_Evaluate(t *testing.T) {
	c := threeQuestionCatalog(AnswerModeScore)

	eval, err := c.Evaluate(Answers{0: "5", 1: "5", 2: "50"})
	require.NoError(t, err)
	assert.Equal(t, 60, eval.Score)
	require.True(t, eval.Matched())
	assert.Equal(t, "excellent", eval.Recommendation)
	assert.Equal(t, "55-60", eval.TierLabel())

	eval, err = c.Evaluate(Answers{0: "0", 1: "0", 2: "10"})
	require.NoError(t, err)
	assert.Equal(t, 10, eval.Score)
	assert.Equal(t, "early", eval.Recommendation)

	c.Tiers = c.Tiers[:2]
	eval, err = c.Evaluate(Answers{0: "5", 1: "5", 2: "50"})
	require.NoError(t, err)
	assert.False(t, eval.Matched())
	assert.Equal(t, "unmatched", eval.TierLabel())
	assert.Equal(t, DefaultRecommendation, eval.Recommendation)
	assert.Equal(t, DefaultFollowUp, eval.FollowUp)
}

func TestCatalog_Evaluate_Idempotent(t *testing.T) {
	c := threeQuestionCatalog(AnswerModeIndex)
	answers := Answers{0: "1", 1: "2", 2: "1"}

	first, err := c.Evaluate(answers)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Evaluate(answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCatalog_Validate(t *testing.T) {
	valid := threeQuestionCatalog(AnswerModeIndex)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   string
	}{
		{"empty key", func(c *Catalog) { c.Key = " " }, "key is required"},
		{"unknown mode", func(c *Catalog) { c.AnswerMode = "weights" }, "unknown answer mode"},
		{"no questions", func(c *Catalog) { c.Questions = nil }, "at least one question"},
		{"no options", func(c *Catalog) { c.Questions[1].Options = nil }, "question 1 has no options"},
		{"negative score", func(c *Catalog) { c.Questions[0].Options[0].Score = -2 }, "negative score"},
		{"inverted tier", func(c *Catalog) { c.Tiers[0].MinScore = 30 }, "tier 0 has min 30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := threeQuestionCatalog(AnswerModeIndex)
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSubmission_Row(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)
	sub := Submission{
		ID:         "id-1",
		CatalogKey: "marketing",
		Respondent: Respondent{
			Name:        "Ada",
			Email:       "ada@example.com",
			CompanyName: "Acme",
			Industry:    "Retail",
			Employees:   "11-50",
			Role:        "CMO",
		},
		Evaluation:  Evaluation{Score: 42, Recommendation: "rec", FollowUp: "follow"},
		SubmittedAt: at,
	}

	row := sub.Row()
	assert.Equal(t, "2024-05-01 09:30:15", row.Timestamp())
	assert.Equal(t, []string{
		"2024-05-01 09:30:15", "Ada", "ada@example.com", "Acme", "Retail",
		"11-50", "CMO", "42", "rec", "follow",
	}, row.Values())
	assert.Len(t, row.Values(), len(RowHeader))
	assert.Equal(t, "id-1", row.ID)
	assert.Equal(t, "marketing", row.CatalogKey)
}
