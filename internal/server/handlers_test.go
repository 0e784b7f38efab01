package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/pkg/storage"
	"github.com/deckforge/deckforge/pkg/template"
)

func newTestRouter() http.Handler {
	return New(Config{Addr: ":0"}, nil).Router()
}

func seedTemplate(t *testing.T, uri string) {
	t.Helper()
	require.NoError(t, template.New().Save(context.Background(), uri, storage.Config{}))
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeResponse(t, rec)["status"])
}

func TestInfo(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/info.potx")

	rec := postJSON(t, router, "/v1/info", map[string]any{"path": "mem://server/info.potx"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	colors := out["colors"].(map[string]any)
	assert.Equal(t, "#4472C4", colors["accent1"])
	fonts := out["fonts"].(map[string]any)
	assert.Equal(t, "Calibri Light", fonts["major"])
	validation := out["validation"].(map[string]any)
	assert.Equal(t, true, validation["ok"])
}

func TestInfoRequiresPath(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/v1/info", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInfoMissingArchive(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/v1/info", map[string]any{"path": "mem://server/absent.potx"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/v1/validate", map[string]any{"path": "x", "bogus": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	out := decodeResponse(t, rec)
	errObj := out["error"].(map[string]any)
	assert.NotEmpty(t, errObj["code"])
	assert.NotEmpty(t, errObj["message"])
}

func TestValidate(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/validate.potx")

	rec := postJSON(t, router, "/v1/validate", map[string]any{"path": "mem://server/validate.potx"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.Equal(t, true, out["ok"])
	assert.Empty(t, out["errors"])
}

func TestDumpTheme(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/dumptheme.potx")

	rec := postJSON(t, router, "/v1/theme/dump", map[string]any{"path": "mem://server/dumptheme.potx"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.Equal(t, "#4472C4", out["accent1"])
	assert.Equal(t, "Calibri", out["minorFont"])
}

func TestSetColors(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/v1/theme/colors", map[string]any{
		"output": "mem://server/setcolors.potx",
		"colors": map[string]string{"dark1": "112233", "accent3": "ABCDEF"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	tpl, err := template.Open(context.Background(), "mem://server/setcolors.potx", storage.Config{})
	require.NoError(t, err)
	th, err := tpl.Theme()
	require.NoError(t, err)
	assert.Equal(t, "#112233", th.Colors()["dk1"])
	assert.Equal(t, "#ABCDEF", th.Colors()["accent3"])
}

func TestSetColorsRejectsUnknownSlot(t *testing.T) {
	router := newTestRouter()
	rec := postJSON(t, router, "/v1/theme/colors", map[string]any{
		"output": "mem://server/badslot.potx",
		"colors": map[string]string{"accent9": "112233"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetFonts(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/v1/theme/fonts", map[string]any{
		"output": "mem://server/setfonts.potx",
		"major":  "Georgia",
		"minor":  "Verdana",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	tpl, err := template.Open(context.Background(), "mem://server/setfonts.potx", storage.Config{})
	require.NoError(t, err)
	th, err := tpl.Theme()
	require.NoError(t, err)
	assert.Equal(t, "Georgia", th.MajorFont().Latin)
	assert.Equal(t, "Verdana", th.MinorFont().Latin)
}

func TestSetThemeNames(t *testing.T) {
	router := newTestRouter()

	rec := postJSON(t, router, "/v1/theme/names", map[string]any{
		"output": "mem://server/setnames.potx",
		"theme":  "Brand",
		"colors": "Brand Colors",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	tpl, err := template.Open(context.Background(), "mem://server/setnames.potx", storage.Config{})
	require.NoError(t, err)
	th, err := tpl.Theme()
	require.NoError(t, err)
	assert.Equal(t, "Brand", th.Name())
	assert.Equal(t, "Brand Colors", th.ColorSchemeName())
}

func TestAudit(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/audit.potx")

	rec := postJSON(t, router, "/v1/audit", map[string]any{"path": "mem://server/audit.potx"})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.Contains(t, out, "slides")
	assert.Contains(t, out, "groups")
}

func TestAuditRejectsBadGroupBy(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/auditbad.potx")

	rec := postJSON(t, router, "/v1/audit", map[string]any{
		"path":     "mem://server/auditbad.potx",
		"group_by": "p,x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTreeSummary(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/tree.potx")

	rec := postJSON(t, router, "/v1/tree", map[string]any{
		"path":    "mem://server/tree.potx",
		"summary": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	summary := out["summary"].([]any)
	require.NotEmpty(t, summary)
	assert.Equal(t, "slide 1:", summary[0])
}

func TestTreeOutOfRange(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/treerange.potx")

	rec := postJSON(t, router, "/v1/tree", map[string]any{
		"path":   "mem://server/treerange.potx",
		"slides": "9",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphDOT(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/graph.potx")

	rec := postJSON(t, router, "/v1/graph", map[string]any{
		"path":   "mem://server/graph.potx",
		"format": "dot",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.Contains(t, out["dot"], "digraph parts {")
}

func TestGraphRejectsUnknownFormat(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/graphfmt.potx")

	rec := postJSON(t, router, "/v1/graph", map[string]any{
		"path":   "mem://server/graphfmt.potx",
		"format": "png",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizeWritesOutput(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/normalize.potx")

	rec := postJSON(t, router, "/v1/normalize", map[string]any{
		"path":    "mem://server/normalize.potx",
		"output":  "mem://server/normalize-out.potx",
		"mapping": map[string]string{"FF0000": "accent1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.EqualValues(t, 1, out["slides_total"])
	assert.EqualValues(t, 0, out["replacements"])

	_, err := storage.ReadBytes(context.Background(), "mem://server/normalize-out.potx", storage.Config{})
	assert.NoError(t, err)
}

func TestSanitize(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/sanitize.potx")

	rec := postJSON(t, router, "/v1/sanitize", map[string]any{
		"path":   "mem://server/sanitize.potx",
		"output": "mem://server/sanitize-out.potx",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeResponse(t, rec), "slides_updated")
}

func TestMakeLayout(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/makelayout.potx")

	rec := postJSON(t, router, "/v1/layout/make", map[string]any{
		"path":       "mem://server/makelayout.potx",
		"output":     "mem://server/makelayout-out.potx",
		"from_slide": 1,
		"name":       "Hero",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.NotEmpty(t, out["layout_part"])
}

func TestSetSlideOutOfRange(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/setslide.potx")

	rec := postJSON(t, router, "/v1/slide/set", map[string]any{
		"path":   "mem://server/setslide.potx",
		"output": "mem://server/setslide-out.potx",
		"slides": "9",
		"font":   "Arial",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetSlideFont(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/slidefont.potx")

	rec := postJSON(t, router, "/v1/slide/set", map[string]any{
		"path":   "mem://server/slidefont.potx",
		"output": "mem://server/slidefont-out.potx",
		"slides": "1",
		"font":   "Arial",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := storage.ReadBytes(context.Background(), "mem://server/slidefont-out.potx", storage.Config{})
	assert.NoError(t, err)
}

func TestSetMasterDefaultsToFirst(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/setmaster.potx")

	rec := postJSON(t, router, "/v1/master/set", map[string]any{
		"path":    "mem://server/setmaster.potx",
		"output":  "mem://server/setmaster-out.potx",
		"palette": map[string]string{"accent1": "FF0000"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetTextStylesNeedsTarget(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/textstyles.potx")

	rec := postJSON(t, router, "/v1/text-styles", map[string]any{
		"path":       "mem://server/textstyles.potx",
		"output":     "mem://server/textstyles-out.potx",
		"title_size": 36.0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetTextStylesMaster(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/textmaster.potx")

	rec := postJSON(t, router, "/v1/text-styles", map[string]any{
		"path":       "mem://server/textmaster.potx",
		"output":     "mem://server/textmaster-out.potx",
		"master":     "1",
		"title_size": 36.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.EqualValues(t, 1, out["updated"])
}

func TestAutoLayout(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/autolayout.potx")

	rec := postJSON(t, router, "/v1/layout/auto", map[string]any{
		"path":   "mem://server/autolayout.potx",
		"output": "mem://server/autolayout-out.potx",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	assert.EqualValues(t, 1, out["layouts_created"])
	assert.EqualValues(t, 1, out["group_count"])
}

func TestReindexLayouts(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/reindex.potx")

	rec := postJSON(t, router, "/v1/layout/reindex", map[string]any{
		"path":   "mem://server/reindex.potx",
		"output": "mem://server/reindex-out.potx",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeResponse(t, rec), "layout_mapping")
}

func TestPruneLayoutsKeepsUsed(t *testing.T) {
	router := newTestRouter()
	seedTemplate(t, "mem://server/prune.potx")

	rec := postJSON(t, router, "/v1/layout/prune", map[string]any{
		"path":   "mem://server/prune.potx",
		"output": "mem://server/prune-out.potx",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decodeResponse(t, rec)["removed"])
}
