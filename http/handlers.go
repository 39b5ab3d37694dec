package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"calorieburn/calories"
	"calorieburn/ml"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

const predictionFailed = "Prediction failed. Please try again."

// Handlers routes requests to the predictor.
type Handlers struct {
	predictor *calories.Handler
	logger    *zap.Logger
}

func (h *Handlers) RegisterHandlers(mux *http.ServeMux) {
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /{$}", h.handleSubmit)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/fields", handleFields)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /ws/predict", h.handleLive)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleFields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sections":      calories.Layout(),
		"feature_order": ml.FeatureNames(),
	})
}

// formPage is the view model of templates/form.html.
type formPage struct {
	Sections []sectionView
	Result   string
	Error    string
}

type sectionView struct {
	Title   string
	Columns [][]controlView
}

type controlView struct {
	calories.Control
	Value string
	Min   string
	Max   string
	Step  string
}

func newFormPage(values calories.InputSource) *formPage {
	page := &formPage{}
	for _, section := range calories.Layout() {
		view := sectionView{Title: section.Title}
		for _, column := range section.Columns {
			controls := make([]controlView, 0, len(column))
			for _, control := range column {
				value, _ := values.Value(control.Name)
				controls = append(controls, controlView{
					Control: control,
					Value:   value,
					Min:     formatNumber(control.Min),
					Max:     formatNumber(control.Max),
					Step:    formatNumber(control.Step),
				})
			}
			view.Columns = append(view.Columns, controls)
		}
		page.Sections = append(page.Sections, view)
	}
	return page
}

// Show makes the page the result sink of a submission.
func (p *formPage) Show(result string) {
	p.Result = result
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, newFormPage(calories.DefaultInputs()))
}

func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "form submission too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form := calories.FormValues(r.PostForm)

	// the form keeps showing what was read, clamped, whatever the outcome
	page := newFormPage(calories.ReadInputs(form))
	if _, err := h.predictor.Submit(r.Context(), form, page); err != nil {
		h.logger.Error("form prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		page.Error = predictionFailed
		h.renderForm(w, r, http.StatusInternalServerError, page)
		return
	}
	h.renderForm(w, r, http.StatusOK, page)
}

func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, page *formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, page); err != nil {
		h.logger.Error("render form",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
	}
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	values, err := decodeValues(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := h.predictor.Submit(r.Context(), values, nil)
	if err != nil {
		h.logger.Error("api prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": predictionFailed})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// decodeValues reads one JSON object of field values. An empty body is the
// untouched form.
func decodeValues(r io.Reader) (calories.MapSource, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	values := calories.MapSource{}
	if err := decoder.Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		return nil, err
	}
	return values, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
