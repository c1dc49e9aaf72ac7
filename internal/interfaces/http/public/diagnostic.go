package public

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/application"
	"github.com/sngm3741/diagnostic-services/api/internal/diagnostic/domain"
	"github.com/sngm3741/diagnostic-services/api/internal/interfaces/http/common"
)

func (h *Handler) formHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := h.catalogKey(r.URL.Query().Get(common.CatalogField))
		catalog, err := h.diagnostics.Catalog(r.Context(), key)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		h.render(w, "form.html", buildFormView(*catalog))
	}
}

func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, common.MaxFormBody)
		if err := r.ParseForm(); err != nil {
			h.metrics.InputRejected("bad_form")
			h.respondError(w, r, http.StatusBadRequest, "invalid form body")
			return
		}

		ctx := r.Context()
		key := h.catalogKey(r.PostForm.Get(common.CatalogField))
		catalog, err := h.diagnostics.Catalog(ctx, key)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}

		submission, err := h.diagnostics.Submit(ctx, application.SubmitCommand{
			Catalog:    catalog,
			Answers:    parseAnswers(r.PostForm, len(catalog.Questions)),
			Respondent: parseRespondent(r.PostForm),
		})
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}

		eval := submission.Evaluation
		h.metrics.ObserveSubmission(catalog.Key, eval.TierLabel(), eval.Score)
		h.logger.Info("submission recorded",
			zap.String("submission_id", submission.ID),
			zap.String("catalog", catalog.Key),
			zap.Int("score", eval.Score),
			zap.String("tier", eval.TierLabel()),
		)

		if common.WantsJSON(r) {
			common.WriteJSON(h.logger, w, http.StatusOK, buildSubmissionResponse(*catalog, *submission))
			return
		}
		h.render(w, "result.html", buildResultView(*catalog, eval))
	}
}

func (h *Handler) catalogListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalogs, err := h.diagnostics.Catalogs(r.Context())
		if err != nil {
			h.logger.Error("catalog list fetch failed", zap.Error(err))
			common.WriteError(h.logger, w, http.StatusInternalServerError, "failed to list catalogs")
			return
		}
		items := make([]catalogSummaryResponse, 0, len(catalogs))
		for _, c := range catalogs {
			items = append(items, buildCatalogSummary(c))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, catalogListResponse{
			Items:          items,
			DefaultCatalog: h.defaultCatalog,
		})
	}
}

func (h *Handler) catalogKey(requested string) string {
	if key := strings.TrimSpace(requested); key != "" {
		return key
	}
	return h.defaultCatalog
}

// parseAnswers は question_<i> を i -> 値 に詰め替える。未送信の設問はマップに含めない。
func parseAnswers(form url.Values, questions int) domain.Answers {
	answers := make(domain.Answers, questions)
	for i := 0; i < questions; i++ {
		values, ok := form[common.QuestionFieldPrefix+strconv.Itoa(i)]
		if !ok || len(values) == 0 {
			continue
		}
		answers[i] = values[0]
	}
	return answers
}

func parseRespondent(form url.Values) domain.Respondent {
	return domain.Respondent{
		Name:        form.Get("name"),
		Email:       form.Get("email"),
		CompanyName: form.Get("company_name"),
		Industry:    form.Get("industry"),
		Employees:   form.Get("employees"),
		Role:        form.Get("role"),
	}
}

// writeFailure はドメインエラーを HTTP ステータスへ変換する。
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *domain.ParseError
	var selectionErr *domain.SelectionError
	switch {
	case errors.Is(err, domain.ErrCatalogNotFound):
		h.metrics.InputRejected("catalog_not_found")
		h.respondError(w, r, http.StatusNotFound, err.Error())
	case errors.As(err, &parseErr):
		h.metrics.InputRejected("parse")
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.As(err, &selectionErr):
		h.metrics.InputRejected("selection")
		h.respondError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrSink):
		h.metrics.SinkFailed(h.sinkDriver)
		h.logger.Error("送信結果の保存に失敗", zap.String("driver", h.sinkDriver), zap.Error(err))
		h.respondError(w, r, http.StatusInternalServerError, "failed to record submission")
	default:
		h.logger.Error("request failed", zap.Error(err))
		h.respondError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if common.WantsJSON(r) {
		common.WriteError(h.logger, w, status, message)
		return
	}
	http.Error(w, message, status)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("テンプレートの描画に失敗", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
