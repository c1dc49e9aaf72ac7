// Package catalog loads questionnaire catalogs from YAML files.
package catalog

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// File is the YAML layout of a catalog.
type File struct {
	Key               string         `yaml:"key"`
	Title             string         `yaml:"title"`
	Locale            string         `yaml:"locale"`
	AnswerMode        string         `yaml:"answer_mode"`
	CollectRespondent bool           `yaml:"collect_respondent"`
	Questions         []QuestionFile `yaml:"questions"`
	Tiers             []TierFile     `yaml:"tiers"`
}

// QuestionFile is a question entry.
type QuestionFile struct {
	Prompt  string       `yaml:"prompt"`
	Options []OptionFile `yaml:"options"`
}

// OptionFile is an option entry.
type OptionFile struct {
	Label string `yaml:"label"`
	Score int    `yaml:"score"`
}

// TierFile is a recommendation tier entry.
type TierFile struct {
	MinScore       int    `yaml:"min_score"`
	MaxScore       int    `yaml:"max_score"`
	Recommendation string `yaml:"recommendation"`
	FollowUp       string `yaml:"follow_up"`
}

// Parse decodes and validates one catalog document.
func Parse(data []byte) (domain.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog.Parse: %w", err)
	}
	c := f.toDomain()
	if err := c.Validate(); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog.Parse: %w", err)
	}
	return c, nil
}

func (f File) toDomain() domain.Catalog {
	mode := domain.AnswerMode(strings.TrimSpace(f.AnswerMode))
	if mode == "" {
		mode = domain.AnswerModeIndex
	}
	questions := make([]domain.Question, 0, len(f.Questions))
	for _, q := range f.Questions {
		options := make([]domain.Option, 0, len(q.Options))
		for _, o := range q.Options {
			options = append(options, domain.Option{Label: o.Label, Score: o.Score})
		}
		questions = append(questions, domain.Question{Prompt: q.Prompt, Options: options})
	}
	tiers := make([]domain.Tier, 0, len(f.Tiers))
	for _, t := range f.Tiers {
		tiers = append(tiers, domain.Tier{
			MinScore:       t.MinScore,
			MaxScore:       t.MaxScore,
			Recommendation: t.Recommendation,
			FollowUp:       t.FollowUp,
		})
	}
	return domain.Catalog{
		Key:               strings.TrimSpace(f.Key),
		Title:             f.Title,
		Locale:            f.Locale,
		AnswerMode:        mode,
		CollectRespondent: f.CollectRespondent,
		Questions:         questions,
		Tiers:             tiers,
	}
}

// FromDomain converts a catalog back into its file layout.
func FromDomain(c domain.Catalog) File {
	f := File{
		Key:               c.Key,
		Title:             c.Title,
		Locale:            c.Locale,
		AnswerMode:        string(c.AnswerMode),
		CollectRespondent: c.CollectRespondent,
	}
	for _, q := range c.Questions {
		qf := QuestionFile{Prompt: q.Prompt}
		for _, o := range q.Options {
			qf.Options = append(qf.Options, OptionFile{Label: o.Label, Score: o.Score})
		}
		f.Questions = append(f.Questions, qf)
	}
	for _, t := range c.Tiers {
		f.Tiers = append(f.Tiers, TierFile{
			MinScore:       t.MinScore,
			MaxScore:       t.MaxScore,
			Recommendation: t.Recommendation,
			FollowUp:       t.FollowUp,
		})
	}
	return f
}

// Store is an in-memory CatalogRepository. It is read-only after construction.
type Store struct {
	catalogs map[string]domain.Catalog
}

// NewStore builds a Store and rejects duplicate keys.
func NewStore(catalogs ...domain.Catalog) (*Store, error) {
	s := &Store{catalogs: make(map[string]domain.Catalog, len(catalogs))}
	for _, c := range catalogs {
		if _, dup := s.catalogs[c.Key]; dup {
			return nil, fmt.Errorf("catalog.NewStore: duplicate key %q", c.Key)
		}
		s.catalogs[c.Key] = c
	}
	return s, nil
}

// LoadBuiltin loads the catalogs embedded in the binary.
func LoadBuiltin() (*Store, error) {
	catalogs, err := readDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	return NewStore(catalogs...)
}

// Load loads built-in catalogs, then lets files in dir replace or extend them.
// An empty dir yields the built-ins only.
func Load(dir string) (*Store, error) {
	builtin, err := readDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	merged := make(map[string]domain.Catalog, len(builtin))
	for _, c := range builtin {
		merged[c.Key] = c
	}
	if strings.TrimSpace(dir) != "" {
		local, err := readDir(os.DirFS(dir), ".")
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(local))
		for _, c := range local {
			if _, dup := seen[c.Key]; dup {
				return nil, fmt.Errorf("catalog.Load: duplicate key %q in %s", c.Key, dir)
			}
			seen[c.Key] = struct{}{}
			merged[c.Key] = c
		}
	}
	catalogs := make([]domain.Catalog, 0, len(merged))
	for _, c := range merged {
		catalogs = append(catalogs, c)
	}
	return NewStore(catalogs...)
}

func readDir(fsys fs.FS, dir string) ([]domain.Catalog, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("catalog: list %s: %w", dir, err)
	}
	sort.Strings(matches)
	catalogs := make([]domain.Catalog, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", name, err)
		}
		c, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}

// List returns every catalog sorted by key.
func (s *Store) List(context.Context) ([]domain.Catalog, error) {
	return s.All(), nil
}

// FindByKey returns the catalog registered under key.
func (s *Store) FindByKey(_ context.Context, key string) (*domain.Catalog, error) {
	c, ok := s.catalogs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrCatalogNotFound, key)
	}
	return &c, nil
}

// All returns every catalog sorted by key.
func (s *Store) All() []domain.Catalog {
	keys := make([]string, 0, len(s.catalogs))
	for k := range s.catalogs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]domain.Catalog, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.catalogs[k])
	}
	return out
}
