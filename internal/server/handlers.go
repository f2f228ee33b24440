package server

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/khanglvm/duriancare/internal/capture"
	"github.com/khanglvm/duriancare/internal/history"
	"github.com/khanglvm/duriancare/internal/onboarding"
	"github.com/khanglvm/duriancare/internal/ripeness"
	"github.com/khanglvm/duriancare/internal/storage"
	"github.com/khanglvm/duriancare/internal/version"
)

type errorResponse struct {
	Error string `json:"error"`

	// Prompt is the question to show the user before retrying with
	// confirmation.
	Prompt string `json:"prompt,omitempty"`
}

type assessmentResponse struct {
	Session string            `json:"session"`
	State   string            `json:"state"`
	Result  ripeness.Result   `json:"result"`
	Factors []ripeness.Factor `json:"factors"`
	Image   string            `json:"image"`
}

type summaryResponse struct {
	history.Summary
	Onboarded bool `json:"onboarded"`
}

type onboardingResponse struct {
	Onboarded bool               `json:"onboarded"`
	Slides    []onboarding.Slide `json:"slides"`
}

type healthResponse struct {
	Status string        `json:"status"`
	Build  version.Build `json:"build"`
}

type infoResponse struct {
	About        string                  `json:"about"`
	Privacy      string                  `json:"privacy"`
	Architecture []onboarding.ModelLayer `json:"architecture"`
	Build        version.Build           `json:"build"`
	Haptic       bool                    `json:"haptic"`
}

type deleteRequest struct {
	IDs     []int64 `json:"ids"`
	Confirm bool    `json:"confirm"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// writeDeclined asks the client to repeat the request with confirmation.
func writeDeclined(w http.ResponseWriter, prompt string) {
	writeJSON(w, http.StatusPreconditionRequired, errorResponse{
		Error:  history.ErrDeclined.Error(),
		Prompt: prompt,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, history.ErrDeclined):
		return http.StatusPreconditionRequired
	case errors.Is(err, capture.ErrCaptureFailed):
		return http.StatusBadRequest
	case errors.Is(err, capture.ErrBusy),
		errors.Is(err, capture.ErrInvalidState),
		errors.Is(err, capture.ErrDiscarded),
		errors.Is(err, storage.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, storage.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: version.Current()})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		Summary:   s.history.Summary(s.opts.RecentLimit),
		Onboarded: s.store.Onboarded(),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		About:        onboarding.About,
		Privacy:      onboarding.Privacy,
		Architecture: onboarding.ModelArchitecture(),
		Build:        version.Current(),
		Haptic:       s.opts.Haptic,
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.List(r.URL.Query().Get("q")))
}

func recordID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid record id"})
		return
	}

	rec, err := s.history.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid record id"})
		return
	}

	ok := confirmed(r)
	err = s.history.DeleteOne(id, history.ConfirmFunc(func(string) bool { return ok }))
	switch {
	case errors.Is(err, history.ErrDeclined):
		writeDeclined(w, history.DeleteOnePrompt)
	case err != nil:
		writeError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteRecords(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	n, err := s.history.DeleteSelected(req.IDs, history.ConfirmFunc(func(string) bool { return req.Confirm }))
	switch {
	case errors.Is(err, history.ErrDeclined):
		writeDeclined(w, history.DeleteSelectedPrompt(len(req.IDs)))
	case err != nil:
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
	}
}

// uploadSource returns the image in the request: the "image" field of a
// multipart form, or the raw body otherwise.
func (s *Server) uploadSource(w http.ResponseWriter, r *http.Request) (capture.FrameSource, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return capture.ReaderSource{R: r.Body}, func() {}, nil
	}

	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		return nil, nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, nil, err
	}
	return capture.ReaderSource{R: file}, func() { file.Close() }, nil
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	src, closeSrc, err := s.uploadSource(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing image upload: " + err.Error()})
		return
	}
	defer closeSrc()

	p := s.newPipeline()
	still, err := p.CaptureStill(r.Context(), src)
	if err != nil {
		writeError(w, err)
		return
	}

	// Registered before classifying so the scan can be discarded mid-flight.
	id := s.sessions.add(p)

	res, err := p.Classify(r.Context())
	if err != nil {
		if !errors.Is(err, capture.ErrDiscarded) {
			s.sessions.remove(id)
			p.Reset()
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assessmentResponse{
		Session: id,
		State:   p.State().String(),
		Result:  res,
		Factors: ripeness.Factors(res.Status),
		Image:   still.DataURL(),
	})
}

func (s *Server) handleCommitAssessment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["session"]

	p, ok := s.sessions.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "capture session not found"})
		return
	}

	rec, err := p.Commit()
	if err != nil {
		writeError(w, err)
		return
	}

	s.sessions.remove(id)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDiscardAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := s.sessions.remove(mux.Vars(r)["session"])
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "capture session not found"})
		return
	}

	p.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, onboardingResponse{
		Onboarded: s.store.Onboarded(),
		Slides:    onboarding.Slides(),
	})
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SetOnboarded(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, onboardingResponse{
		Onboarded: true,
		Slides:    onboarding.Slides(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		writeDeclined(w, storage.ResetPrompt)
		return
	}

	if err := s.store.Reset(); err != nil {
		writeError(w, err)
		return
	}

	s.sessions.clear()
	s.history.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}
