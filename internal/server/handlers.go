package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/fetch"
	"github.com/jonathan/ats-optimizer/internal/rendering"
	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/session"
	"github.com/jonathan/ats-optimizer/internal/types"
)

// maxUploadBytes bounds résumé uploads and JSON bodies.
const maxUploadBytes = 10 << 20

type resumeRequest struct {
	Text string `json:"text" validate:"required"`
}

type stepRequest struct {
	Step string `json:"step" validate:"required,oneof=UPLOAD DASHBOARD EDITOR"`
}

type editRequest struct {
	Content *string `json:"content" validate:"required"`
}

type applyRequest struct {
	Choice string `json:"choice" validate:"required"`
}

type tailorRequest struct {
	Text string `json:"text"`
	URL  string `json:"url" validate:"omitempty,url"`
}

// SessionResponse is the state of the caller's session.
type SessionResponse struct {
	Namespace        string                `json:"namespace"`
	Step             types.Step            `json:"step"`
	Analysis         *types.AnalysisResult `json:"analysis,omitempty"`
	CurrentScore     *int                  `json:"currentScore,omitempty"`
	Sections         []types.Section       `json:"sections"`
	PendingProposals []string              `json:"pendingProposals"`
	Tailoring        *types.JobMatchResult `json:"tailoring,omitempty"`
}

// ReportResponse describes a committed bulk revision or tailoring.
type ReportResponse struct {
	Updated  []string        `json:"updated"`
	Missing  []string        `json:"missing"`
	Ignored  []string        `json:"ignored"`
	Partial  bool            `json:"partial"`
	Sections []types.Section `json:"sections"`
}

func newReportResponse(report sections.Report, set []types.Section) ReportResponse {
	return ReportResponse{
		Updated:  nonNil(report.Updated),
		Missing:  nonNil(report.Missing),
		Ignored:  nonNil(report.Ignored),
		Partial:  report.Partial(),
		Sections: set,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is empty"}
		}
		return &ErrValidation{Message: "invalid request body"}
	}
	if err := s.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ErrValidation{Field: strings.ToLower(fe.Field()), Message: fmt.Sprintf("failed %q check", fe.Tag())}
		}
		return &ErrValidation{Message: err.Error()}
	}
	return nil
}

func (s *Server) sessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{
		Namespace:        sess.Namespace(),
		Step:             sess.Step(),
		Sections:         sess.Sections(),
		PendingProposals: nonNil(sess.Coordinator().Store().PendingProposals()),
	}
	if resp.Sections == nil {
		resp.Sections = []types.Section{}
	}
	if a, ok := sess.Analysis(); ok {
		resp.Analysis = a
		if current, err := sess.CurrentScore(); err == nil {
			score := current.OverallScore
			resp.CurrentScore = &score
		}
	}
	if match, ok := sess.Tailoring(); ok {
		resp.Tailoring = &match
	}
	return resp
}

// handleUploadResume analyzes an uploaded document (multipart field "file") or
// pasted text ({"text": ...}).
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		file, header, err := r.FormFile("file")
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "file", Message: "a résumé file is required"})
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			s.fail(w, r, &ErrValidation{Field: "file", Message: "upload could not be read"})
			return
		}
		s.logger.Debug("résumé upload", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))

		result, err := sess.AnalyzeDocument(r.Context(), content, filepath.Ext(header.Filename))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, result)
		return
	}

	var req resumeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := sess.Analyze(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(s.session(r)))
}

// handleResetSession starts over.
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).Reset(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess := s.session(r)
	if err := sess.SetStep(r.Context(), types.Step(req.Step)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]types.Step{"step": sess.Step()})
}

func (s *Server) handleEditSection(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	sess := s.session(r)
	if err := sess.Edit(r.Context(), id, *req.Content); err != nil {
		s.fail(w, r, err)
		return
	}
	sec, _ := types.SectionSet(sess.Sections()).Find(id)
	s.jsonResponse(w, http.StatusOK, sec)
}

func (s *Server) handleImproveSection(w http.ResponseWriter, r *http.Request) {
	proposal, err := s.session(r).Improve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proposal)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposal, err := s.session(r).Proposal(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, proposal)
}

func (s *Server) handleApplyProposal(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	choice, err := types.ParseChoice(req.Choice)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "choice", Message: err.Error()})
		return
	}
	sec, err := s.session(r).ApplyProposal(r.Context(), chi.URLParam(r, "id"), choice)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sec)
}

func (s *Server) handleDiscardProposal(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).DiscardProposal(chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviseAll(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	report, err := sess.ReviseAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newReportResponse(report, sess.Sections()))
}

// handleTailor resolves the job description from pasted text or a URL and
// returns the pending tailoring result.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	var req tailorRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	target, err := fetch.JobSource{Text: req.Text, URL: req.URL}.Resolve(r.Context(), s.jobs, s.extractor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	match, err := s.session(r).Tailor(r.Context(), target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, match)
}

func (s *Server) handleApplyTailoring(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	report, err := sess.ApplyTailoring(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newReportResponse(report, sess.Sections()))
}

func (s *Server) handleDiscardTailoring(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).DiscardTailoring(); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the rendered section set as an attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")
	format, err := rendering.ParseFormat(name)
	if err != nil {
		s.fail(w, r, &ErrUnsupportedExport{Format: name})
		return
	}
	data, err := s.session(r).Export(format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("export write failed", zap.Error(err))
	}
}
