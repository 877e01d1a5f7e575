// Package unsubscribe serves the page linked from every menu email that removes the
// recipient from the subscriber list.
package unsubscribe

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"

	"firstscoop-backend/internal/components/assert"
	"firstscoop-backend/internal/components/telemetry"
	"firstscoop-backend/internal/subscribers"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("firstscoop/unsubscribe")

const (
	report_handler_remove = "handler.remove"
	report_handler_render = "handler.render"
)

//go:embed page.html.tmpl
var pageText string

var pageTemplate = template.Must(template.New("unsubscribe").Parse(pageText))

type page struct {
	Title  string
	Email  string
	Detail string
}

type Handler struct {
	remover subscribers.Remover
	tel     telemetry.API
}

func NewHandler(remover subscribers.Remover, tel telemetry.API) Handler {
	assert.NotNil(remover)
	assert.NotNil(tel)
	return Handler{
		remover: remover,
		tel:     telemetry.NewScopedAPI("unsubscribe", tel),
	}
}

// Mux routes `/unsubscribe` to the handler.
func (h Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/unsubscribe", h)
	return mux
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "unsubscribe:serve")
	defer span.End()

	if r.Method != http.MethodGet {
		w.Header().Set("allow", http.MethodGet)
		h.render(w, http.StatusMethodNotAllowed, page{Title: "Error", Detail: "Method not allowed."})
		return
	}

	hash := r.URL.Query().Get("hash")
	if hash == "" {
		h.render(w, http.StatusBadRequest, page{Title: "Error", Detail: "Hash parameter is undefined."})
		return
	}

	email, err := h.remover.RemoveByHash(ctx, hash)
	if errors.Is(err, subscribers.ErrNotFound) {
		h.render(w, http.StatusNotFound, page{Title: "Error", Detail: "Email not found."})
		return
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.tel.ReportBroken(report_handler_remove, err)
		h.render(w, http.StatusInternalServerError, page{Title: "Error", Detail: err.Error()})
		return
	}

	h.render(w, http.StatusOK, page{Title: "Unsubscribed", Email: email})
}

func (h Handler) render(w http.ResponseWriter, status int, p page) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pageTemplate.ExecuteTemplate(w, "page", p)
	if err != nil {
		h.tel.ReportBroken(report_handler_render, err)
	}
}
