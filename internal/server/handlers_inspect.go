package server

import (
	"net/http"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/report"
)

type pathRequest struct {
	Path string `json:"path"`
}

type validationResponse struct {
	OK       bool     `json:"ok"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type infoResponse struct {
	Colors     map[string]string  `json:"colors"`
	Fonts      infoFonts          `json:"fonts"`
	Validation validationResponse `json:"validation"`
}

type infoFonts struct {
	Major *string `json:"major"`
	Minor *string `json:"minor"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	tpl, err := s.openTemplate(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	th, err := tpl.Theme()
	if err != nil {
		s.writeError(w, err)
		return
	}
	vr, err := tpl.Validate()
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := infoResponse{
		Colors: th.Colors(),
		Validation: validationResponse{
			OK:       vr.OK(),
			Errors:   emptyNotNil(vr.Errors),
			Warnings: emptyNotNil(vr.Warnings),
		},
	}
	if major := th.MajorFont(); major != nil {
		resp.Fonts.Major = &major.Latin
	}
	if minor := th.MinorFont(); minor != nil {
		resp.Fonts.Minor = &minor.Latin
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	tpl, err := s.openTemplate(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	vr, err := tpl.Validate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, validationResponse{
		OK:       vr.OK(),
		Errors:   emptyNotNil(vr.Errors),
		Warnings: emptyNotNil(vr.Warnings),
	})
}

func (s *Server) handleDumpTheme(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	tpl, err := s.openTemplate(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	th, err := tpl.Theme()
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload := th.Colors()
	if major := th.MajorFont(); major != nil {
		payload["majorFont"] = major.Latin
	}
	if minor := th.MinorFont(); minor != nil {
		payload["minorFont"] = minor.Latin
	}
	writeJSON(w, http.StatusOK, payload)
}

type auditRequest struct {
	Path    string `json:"path"`
	Slides  string `json:"slides,omitempty"`
	GroupBy string `json:"group_by,omitempty"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	slides, err := errors.ParseSlideNumbers(req.Slides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rep, err := report.Audit(p, slides, parseGroupBy(req.GroupBy))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type treeRequest struct {
	Path          string `json:"path"`
	Slides        string `json:"slides,omitempty"`
	Grouped       bool   `json:"grouped,omitempty"`
	IncludeLayout bool   `json:"include_layout,omitempty"`
	IncludeMaster bool   `json:"include_master,omitempty"`
	IncludeText   bool   `json:"include_text,omitempty"`
	Summary       bool   `json:"summary,omitempty"`
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	slides, err := errors.ParseSlideNumbers(req.Slides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Grouped && !req.IncludeLayout && !req.IncludeMaster {
		req.IncludeLayout = true
		req.IncludeMaster = true
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	dump, err := report.DumpTree(p, slides, report.DumpOptions{
		IncludeLayout: req.IncludeLayout,
		IncludeMaster: req.IncludeMaster,
		IncludeText:   req.IncludeText,
		Grouped:       req.Grouped,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Summary {
		writeJSON(w, http.StatusOK, map[string][]string{
			"summary": report.Summarize(dump, false),
		})
		return
	}
	writeJSON(w, http.StatusOK, dump)
}

type graphRequest struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path}); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	graph, err := report.BuildGraph(p)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch req.Format {
	case "", "json":
		writeJSON(w, http.StatusOK, graph)
	case "dot":
		writeJSON(w, http.StatusOK, map[string]string{"dot": report.ToDOT(graph)})
	case "svg":
		svg, err := report.RenderSVG(report.ToDOT(graph))
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(svg)
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q", req.Format))
	}
}

// parseGroupBy splits a comma list like "p,b,l". Empty input keeps the
// audit default.
func parseGroupBy(value string) []string {
	if value == "" {
		return nil
	}
	var tokens []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			tokens = append(tokens, item)
		}
	}
	return tokens
}

func emptyNotNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
