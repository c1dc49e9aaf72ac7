package domain

import (
	"strconv"
	"strings"
)

const (
	// DefaultRecommendation is shown when the score falls outside every tier.
	DefaultRecommendation = "No recommendation found."
	// DefaultFollowUp pairs with DefaultRecommendation.
	DefaultFollowUp = "No follow-up actions available."
)

// Answers maps a question index to the raw submitted value.
type Answers map[int]string

// AnswersFromValues assigns values to questions by position.
func AnswersFromValues(values []string) Answers {
	answers := make(Answers, len(values))
	for i, v := range values {
		answers[i] = v
	}
	return answers
}

// Evaluation is the outcome of scoring one set of answers.
type Evaluation struct {
	Score          int
	Tier           *Tier
	Recommendation string
	FollowUp       string
}

// Matched reports whether a tier covered the score.
func (e Evaluation) Matched() bool {
	return e.Tier != nil
}

// TierLabel returns the matched range or "unmatched".
func (e Evaluation) TierLabel() string {
	if e.Tier == nil {
		return "unmatched"
	}
	return e.Tier.Label()
}

// Score sums the score of the selected option for every question.
func (c Catalog) Score(answers Answers) (int, error) {
	total := 0
	for i, q := range c.Questions {
		raw, ok := answers[i]
		value := strings.TrimSpace(raw)
		if !ok || value == "" {
			return 0, &ParseError{Question: i, Value: raw, Err: ErrMissingAnswer}
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, &ParseError{Question: i, Value: raw, Err: err}
		}
		option, err := c.selectOption(i, q, parsed)
		if err != nil {
			return 0, err
		}
		total += option.Score
	}
	return total, nil
}

func (c Catalog) selectOption(index int, q Question, value int) (Option, error) {
	if c.AnswerMode == AnswerModeScore {
		for _, o := range q.Options {
			if o.Score == value {
				return o, nil
			}
		}
		return Option{}, &SelectionError{Question: index, Value: value, Mode: c.AnswerMode, Options: len(q.Options)}
	}
	if value < 0 || value >= len(q.Options) {
		return Option{}, &SelectionError{Question: index, Value: value, Mode: AnswerModeIndex, Options: len(q.Options)}
	}
	return q.Options[value], nil
}

// ResolveTier returns the first tier in declaration order containing score.
func ResolveTier(score int, tiers []Tier) (Tier, bool) {
	for _, t := range tiers {
		if t.Contains(score) {
			return t, true
		}
	}
	return Tier{}, false
}

// Recommend returns the recommendation pair for score, falling back to the defaults.
func Recommend(score int, tiers []Tier) (recommendation, followUp string) {
	if t, ok := ResolveTier(score, tiers); ok {
		return t.Recommendation, t.FollowUp
	}
	return DefaultRecommendation, DefaultFollowUp
}

// Evaluate scores answers and classifies the total.
func (c Catalog) Evaluate(answers Answers) (Evaluation, error) {
	score, err := c.Score(answers)
	if err != nil {
		return Evaluation{}, err
	}
	eval := Evaluation{
		Score:          score,
		Recommendation: DefaultRecommendation,
		FollowUp:       DefaultFollowUp,
	}
	if t, ok := ResolveTier(score, c.Tiers); ok {
		eval.Tier = &t
		eval.Recommendation = t.Recommendation
		eval.FollowUp = t.FollowUp
	}
	return eval, nil
}
