package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"labscope/adapters/export"
	"labscope/domain/catalog"
	"labscope/domain/core"
)

// handleView returns the current derived view for a resource
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleSetQuery replaces the free-text query for a resource
func (s *Server) handleSetQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess.SetQuery(body.Query)
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleToggleValue flips one selected value in a dimension
func (s *Server) handleToggleValue(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	dim := catalog.Dimension(chi.URLParam(r, "dimension"))
	value := chi.URLParam(r, "value")
	sess.ToggleValue(dim, value)
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleClearFilters drops the query and all selected values
func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	sess.ClearFilters()
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleSetPage navigates to a page of the filtered view
func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	sess.SetPage(page)
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleToggleCompare flips one record code in the comparison selection
func (s *Server) handleToggleCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	if err := sess.ToggleCompare(chi.URLParam(r, "code")); err != nil {
		if errors.Is(err, core.ErrCompareFull) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleClearCompare empties the comparison selection
func (s *Server) handleClearCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	sess.ClearCompare()
	s.writeJSON(w, http.StatusOK, sess.View())
}

// handleTypeahead returns comparison candidates for a search string
func (s *Server) handleTypeahead(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	candidates := sess.Typeahead(r.URL.Query().Get("q"))
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"candidates": candidates})
}

// handleVocabulary returns the selectable values for a dimension
func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	dim := catalog.Dimension(chi.URLParam(r, "dimension"))
	if s.vocab == nil {
		s.writeJSON(w, http.StatusOK, catalog.Vocabulary{Dimension: dim})
		return
	}
	if err := s.vocab.Err(dim); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, catalog.Vocabulary{Dimension: dim, Values: s.vocab.Values(dim)})
}

// handleReport renders the derived view as an HTML summary report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.ReportHTML(sess.View())); err != nil {
		s.logger.Warn("failed to write report: %v", err)
	}
}

// handleExport streams the comparison set as an xlsx workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown resource")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="comparison.xlsx"`)
	if err := export.ComparisonWorkbook(w, sess.View().Comparison); err != nil {
		s.logger.Error("comparison export failed: %v", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
