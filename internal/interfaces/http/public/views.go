package public

import (
	"embed"
	"html/template"
	"strconv"
	"strings"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
	"github.com/sngm3741/diagnostic-services/api/internal/interfaces/http/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type uiText struct {
	Submit         string
	Score          string
	Recommendation string
	FollowUp       string
	Retake         string
	AboutYou       string
	Name           string
	Email          string
	CompanyName    string
	Industry       string
	Employees      string
	Role           string
}

var texts = map[string]uiText{
	"en": {
		Submit:         "Submit",
		Score:          "Your score",
		Recommendation: "Recommendation",
		FollowUp:       "Follow-up",
		Retake:         "Take the assessment again",
		AboutYou:       "About you",
		Name:           "Name",
		Email:          "Email",
		CompanyName:    "Company name",
		Industry:       "Industry",
		Employees:      "Number of employees",
		Role:           "Role",
	},
	"es": {
		Submit:         "Enviar",
		Score:          "Tu puntuación",
		Recommendation: "Recomendación",
		FollowUp:       "Siguientes pasos",
		Retake:         "Repetir la evaluación",
		AboutYou:       "Sobre ti",
		Name:           "Nombre",
		Email:          "Correo electrónico",
		CompanyName:    "Empresa",
		Industry:       "Sector",
		Employees:      "Número de empleados",
		Role:           "Cargo",
	},
}

// textFor は "es-MX" のようなロケールを主言語タグで引き、無ければ英語を返す。
func textFor(locale string) (string, uiText) {
	lang := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if t, ok := texts[lang]; ok {
		return lang, t
	}
	return "en", texts["en"]
}

type optionView struct {
	Value int
	Label string
}

type questionView struct {
	Field   string
	Prompt  string
	Options []optionView
}

type formView struct {
	Lang              string
	Text              uiText
	Title             string
	CatalogKey        string
	CollectRespondent bool
	Questions         []questionView
}

type resultView struct {
	Lang           string
	Text           uiText
	Title          string
	CatalogKey     string
	Score          int
	MaxScore       int
	Recommendation string
	FollowUp       string
}

// buildFormView は回答モードに応じて各選択肢の送信値を決める。
func buildFormView(c domain.Catalog) formView {
	lang, text := textFor(c.Locale)
	questions := make([]questionView, 0, len(c.Questions))
	for i, q := range c.Questions {
		options := make([]optionView, 0, len(q.Options))
		for j, o := range q.Options {
			value := j
			if c.AnswerMode == domain.AnswerModeScore {
				value = o.Score
			}
			options = append(options, optionView{Value: value, Label: o.Label})
		}
		questions = append(questions, questionView{
			Field:   common.QuestionFieldPrefix + strconv.Itoa(i),
			Prompt:  q.Prompt,
			Options: options,
		})
	}
	return formView{
		Lang:              lang,
		Text:              text,
		Title:             c.Title,
		CatalogKey:        c.Key,
		CollectRespondent: c.CollectRespondent,
		Questions:         questions,
	}
}

func buildResultView(c domain.Catalog, eval domain.Evaluation) resultView {
	lang, text := textFor(c.Locale)
	return resultView{
		Lang:           lang,
		Text:           text,
		Title:          c.Title,
		CatalogKey:     c.Key,
		Score:          eval.Score,
		MaxScore:       c.MaxScore(),
		Recommendation: eval.Recommendation,
		FollowUp:       eval.FollowUp,
	}
}
