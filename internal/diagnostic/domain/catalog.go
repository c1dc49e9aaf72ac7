package domain

import (
	"fmt"
	"strings"
)

// AnswerMode tells how a submitted value selects an option.
type AnswerMode string

const (
	// AnswerModeIndex treats the submitted value as the option position.
	AnswerModeIndex AnswerMode = "index"
	// AnswerModeScore treats the submitted value as the option score itself.
	AnswerModeScore AnswerMode = "score"
)

// Option is a labeled answer carrying a non-negative score.
type Option struct {
	Label string
	Score int
}

// Question is a prompt with its ordered options.
type Question struct {
	Prompt  string
	Options []Option
}

// Tier maps an inclusive score range to a recommendation.
type Tier struct {
	MinScore       int
	MaxScore       int
	Recommendation string
	FollowUp       string
}

// Contains reports whether score lies within [MinScore, MaxScore].
func (t Tier) Contains(score int) bool {
	return t.MinScore <= score && score <= t.MaxScore
}

// Label renders the range as "min-max".
func (t Tier) Label() string {
	return fmt.Sprintf("%d-%d", t.MinScore, t.MaxScore)
}

// Catalog is an immutable questionnaire variant selected by key.
type Catalog struct {
	Key               string
	Title             string
	Locale            string
	AnswerMode        AnswerMode
	CollectRespondent bool
	Questions         []Question
	Tiers             []Tier
}

// MaxScore returns the highest total reachable by picking the best option everywhere.
func (c Catalog) MaxScore() int {
	total := 0
	for _, q := range c.Questions {
		best := 0
		for _, o := range q.Options {
			if o.Score > best {
				best = o.Score
			}
		}
		total += best
	}
	return total
}

// Validate checks structural rules. Tier gaps and overlaps are allowed:
// gaps resolve to the default recommendation, overlaps to the first declared tier.
func (c Catalog) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("catalog key is required")
	}
	switch c.AnswerMode {
	case AnswerModeIndex, AnswerModeScore:
	default:
		return fmt.Errorf("catalog %s: unknown answer mode %q", c.Key, c.AnswerMode)
	}
	if len(c.Questions) == 0 {
		return fmt.Errorf("catalog %s: at least one question is required", c.Key)
	}
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("catalog %s: question %d has no prompt", c.Key, i)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("catalog %s: question %d has no options", c.Key, i)
		}
		for j, o := range q.Options {
			if o.Score < 0 {
				return fmt.Errorf("catalog %s: question %d option %d has negative score %d", c.Key, i, j, o.Score)
			}
		}
	}
	for i, t := range c.Tiers {
		if t.MinScore > t.MaxScore {
			return fmt.Errorf("catalog %s: tier %d has min %d above max %d", c.Key, i, t.MinScore, t.MaxScore)
		}
	}
	return nil
}
