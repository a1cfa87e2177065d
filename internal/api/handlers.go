package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	gojson "github.com/goccy/go-json"

	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/core"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
	"github.com/zohar-ui/ParserZamaActive/pkg/tree"
)

// maxDocumentBytes bounds request bodies.
const maxDocumentBytes = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.validator.Validate(doc))
}

type migrateResponse struct {
	Document gojson.RawMessage `json:"document"`
	Report   *migrate.Report   `json:"report"`
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	from := s.engine.Versions()[0]
	to := s.engine.Latest()
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		parsed, err := migrate.ParseVersion(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if v := q.Get("to"); v != "" {
		parsed, err := migrate.ParseVersion(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		to = parsed
	}

	doc, err := readDocument(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, report, err := s.engine.Migrate(doc, from, to)
	switch {
	case errors.Is(err, migrate.ErrUnknownVersion), errors.Is(err, migrate.ErrNoPath):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := tree.MarshalJSON(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, migrateResponse{Document: data, Report: report})
}

type classifyResponse struct {
	Name       string `json:"name"`
	Normalized string `json:"normalized"`
	Category   string `json:"category"`
	Matched    bool   `json:"matched"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		jsonError(w, "name is required", http.StatusBadRequest)
		return
	}
	cat, matched := s.classifier.Match(name)
	writeJSON(w, http.StatusOK, classifyResponse{
		Name:       name,
		Normalized: equipment.Normalize(name),
		Category:   cat.String(),
		Matched:    matched,
	})
}

type stepResponse struct {
	From        migrate.Version `json:"from"`
	To          migrate.Version `json:"to"`
	Description string          `json:"description"`
	Rules       []string        `json:"rules"`
}

func (s *Server) handleSteps(w http.ResponseWriter, _ *http.Request) {
	steps := s.engine.Steps()
	out := make([]stepResponse, 0, len(steps))
	for _, st := range steps {
		rules := make([]string, 0, len(st.Rules))
		for _, rule := range st.Rules {
			rules = append(rules, rule.Name())
		}
		out = append(out, stepResponse{From: st.From, To: st.To, Description: st.Description, Rules: rules})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChecks(w http.ResponseWriter, _ *http.Request) {
	checks := s.validator.Checks()
	out := make([]core.CheckInfo, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Info())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		jsonError(w, "run ledger disabled", http.StatusNotFound)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := s.ledger.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs", "error", err)
		jsonError(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*state.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

type runResponse struct {
	*state.Run
	Records []state.DocumentRecord `json:"records"`
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		jsonError(w, "run ledger disabled", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "runID")
	run, err := s.ledger.GetRun(r.Context(), id)
	if errors.Is(err, state.ErrRunNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get run", "run_id", id, "error", err)
		jsonError(w, "failed to get run", http.StatusInternalServerError)
		return
	}
	docs, err := s.ledger.GetRunDocuments(r.Context(), id)
	if err != nil {
		s.log.Error("get run documents", "run_id", id, "error", err)
		jsonError(w, "failed to get run documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []state.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, runResponse{Run: run, Records: docs})
}

// readDocument decodes the request body as YAML when the content type says
// so and as JSON otherwise.
func readDocument(w http.ResponseWriter, r *http.Request) (tree.Value, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	format := tree.FormatJSON
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.Contains(mt, "yaml") {
		format = tree.FormatYAML
	}
	doc, err := tree.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s document: %w", format, err)
	}
	return doc, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	data, _ := gojson.Marshal(map[string]string{"error": msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
