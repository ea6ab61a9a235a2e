package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/PXLTCH/startup-ai/internal/export"
	"github.com/PXLTCH/startup-ai/internal/interview"
	"github.com/PXLTCH/startup-ai/internal/logo"
)

type answerRequest struct {
	Text *string `json:"text"`
}

type confirmRequest struct {
	Text *string `json:"text"`
}

type jumpRequest struct {
	QuestionID string `json:"questionId"`
}

type styleRequest struct {
	Style string `json:"style"`
}

type regenerateLogosRequest struct {
	KeepLayout *bool `json:"keepLayout"`
}

// choiceRequest carries a 0-based ordinal or a literal value.
type choiceRequest struct {
	Choice json.RawMessage `json:"choice"`
}

type favoriteRequest struct {
	Path  string `json:"path"`
	Style string `json:"style"`
}

type exportLogosRequest struct {
	Source string `json:"source"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.Create(r.Context())
	respond(w, res, err)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.Current(r.Context(), r.PathValue("id"))
	respond(w, res, err)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Text == nil {
		writeError(w, fmt.Errorf("%w: text is required", interview.ErrInvalidInput))
		return
	}
	res, err := s.deps.Engine.Submit(r.Context(), r.PathValue("id"), *req.Text)
	respond(w, res, err)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Engine.Confirm(r.Context(), r.PathValue("id"), req.Text)
	respond(w, res, err)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.Skip(r.Context(), r.PathValue("id"))
	respond(w, res, err)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Engine.JumpTo(r.Context(), r.PathValue("id"), req.QuestionID)
	respond(w, res, err)
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	t, ok := s.transcript(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     t.Total,
		"confirmed": t.Confirmed,
		"items":     t.Items,
	})
}

func (s *Server) handleRegenerateNames(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.RegenerateNames(r.Context(), r.PathValue("id"))
	respond(w, res, err)
}

func (s *Server) handleSelectName(w http.ResponseWriter, r *http.Request) {
	choice, ok := readChoice(w, r)
	if !ok {
		return
	}
	res, err := s.deps.Engine.SelectName(r.Context(), r.PathValue("id"), choice)
	respond(w, res, err)
}

func (s *Server) handleLogoStyle(w http.ResponseWriter, r *http.Request) {
	var req styleRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Engine.ChooseLogoStyle(r.Context(), r.PathValue("id"), req.Style)
	respond(w, res, err)
}

func (s *Server) handlePreviews(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Engine.Previews(r.Context(), r.PathValue("id"))
	respond(w, res, err)
}

func (s *Server) handleRegenerateLogos(w http.ResponseWriter, r *http.Request) {
	var req regenerateLogosRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Engine.RegenerateLogos(r.Context(), r.PathValue("id"), req.KeepLayout)
	respond(w, res, err)
}

func (s *Server) handleSelectLogo(w http.ResponseWriter, r *http.Request) {
	choice, ok := readChoice(w, r)
	if !ok {
		return
	}
	res, err := s.deps.Engine.SelectLogo(r.Context(), r.PathValue("id"), choice)
	respond(w, res, err)
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	var req interview.Prefs
	if !readJSON(w, r, &req) {
		return
	}
	res, err := s.deps.Engine.SavePrefs(r.Context(), r.PathValue("id"), req)
	respond(w, res, err)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !readJSON(w, r, &req) {
		return
	}
	favored, err := s.deps.Engine.ToggleFavorite(r.Context(), r.PathValue("id"), req.Path, req.Style)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favored": favored})
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.deps.Engine.Favorites(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": favs})
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	t, ok := s.transcript(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, t); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment("answers", t, "json"))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	t, ok := s.transcript(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment("answers", t, "md"))
	_, _ = io.WriteString(w, export.FormatMarkdown(t))
}

func (s *Server) handleExportLogos(w http.ResponseWriter, r *http.Request) {
	var req exportLogosRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = export.SourceCurrent
	}
	if req.Source != export.SourceCurrent && req.Source != export.SourceFavorites {
		writeError(w, fmt.Errorf("%w: source must be %q or %q", interview.ErrInvalidInput, export.SourceCurrent, export.SourceFavorites))
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	snap, err := s.deps.Engine.Snapshot(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	var favorites []string
	if req.Source == export.SourceFavorites {
		favs, err := s.deps.Engine.Favorites(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, f := range favs {
			favorites = append(favorites, f.Path)
		}
	}

	rel, err := s.deps.Exporter.Logos(ctx, snap, req.Source, favorites)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": rel, "download": assetURL(rel)})
}

func (s *Server) handleFounderPack(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Engine.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	pack, err := s.deps.Exporter.FounderPack(r.Context(), s.deps.Catalog, snap)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pack": pack, "download": assetURL(pack.Path)})
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	full, err := s.deps.Assets.Resolve(r.PathValue("path"))
	switch {
	case errors.Is(err, logo.ErrOutsideRoot):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	case errors.Is(err, logo.ErrAssetNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "asset not found"})
		return
	case err != nil:
		writeError(w, err)
		return
	}
	http.ServeFile(w, r, full)
}

// transcript loads the session snapshot as a transcript, writing the error
// response itself on failure.
func (s *Server) transcript(w http.ResponseWriter, r *http.Request) (*export.Transcript, bool) {
	snap, err := s.deps.Engine.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return export.BuildTranscript(s.deps.Catalog, snap, s.deps.Now()), true
}

// --- Helpers ---

func attachment(prefix string, t *export.Transcript, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s_%s_%d.%s"`, prefix, logo.CompanySlug(t.Profile.Name), t.GeneratedAt.UnixMilli(), ext)
}

func assetURL(rel string) string {
	return "/assets/" + path.Clean(rel)
}

func readChoice(w http.ResponseWriter, r *http.Request) (interview.Choice, bool) {
	var req choiceRequest
	if !readJSON(w, r, &req) {
		return interview.Choice{}, false
	}
	var n int
	if err := json.Unmarshal(req.Choice, &n); err == nil {
		return interview.IndexChoice(n), true
	}
	var text string
	if err := json.Unmarshal(req.Choice, &text); err == nil {
		return interview.TextChoice(text), true
	}
	writeError(w, fmt.Errorf("%w: choice must be a number or a string", interview.ErrInvalidInput))
	return interview.Choice{}, false
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		// Allow empty body for requests with no fields.
		return true
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, fmt.Errorf("%w: invalid JSON: %v", interview.ErrInvalidInput, err))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, res *interview.Result, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeError maps the error taxonomy onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, interview.ErrInvalidInput), errors.Is(err, export.ErrNothingToExport):
		status = http.StatusBadRequest
	case errors.Is(err, interview.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interview.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, interview.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Retryable: interview.IsRetryable(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encoding response: %v", err), http.StatusInternalServerError)
	}
}
