package server

import (
	"encoding/base64"
	"net/http"
	"sort"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/report"
	"github.com/deckforge/deckforge/pkg/style"
	"github.com/deckforge/deckforge/pkg/theme"
)

type setColorsRequest struct {
	Path   string            `json:"path,omitempty"`
	Output string            `json:"output"`
	Colors map[string]string `json:"colors"`
}

func (s *Server) handleSetColors(w http.ResponseWriter, r *http.Request) {
	var req setColorsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Colors) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "colors must not be empty"))
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
	for key, value := range req.Colors {
		slot := theme.CanonicalSlot(key)
		if slot == "" {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown color slot %q", key))
			return
		}
		if err := th.SetColor(slot, value); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := tpl.Save(r.Context(), req.Output, s.cfg.Storage); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type setFontsRequest struct {
	Path   string `json:"path,omitempty"`
	Output string `json:"output"`
	Major  string `json:"major,omitempty"`
	Minor  string `json:"minor,omitempty"`
}

func (s *Server) handleSetFonts(w http.ResponseWriter, r *http.Request) {
	var req setFontsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Major == "" && req.Minor == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "need major or minor font"))
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
	if req.Major != "" {
		th.SetMajorFont(theme.FontSpec{Latin: req.Major})
	}
	if req.Minor != "" {
		th.SetMinorFont(theme.FontSpec{Latin: req.Minor})
	}
	if err := tpl.Save(r.Context(), req.Output, s.cfg.Storage); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type setThemeNamesRequest struct {
	Path   string `json:"path,omitempty"`
	Output string `json:"output"`
	Theme  string `json:"theme,omitempty"`
	Colors string `json:"colors,omitempty"`
	Fonts  string `json:"fonts,omitempty"`
}

func (s *Server) handleSetThemeNames(w http.ResponseWriter, r *http.Request) {
	var req setThemeNamesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"output": req.Output}); err != nil {
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
	if req.Theme != "" {
		th.SetName(req.Theme)
	}
	if req.Colors != "" {
		th.SetColorSchemeName(req.Colors)
	}
	if req.Fonts != "" {
		th.SetFontSchemeName(req.Fonts)
	}
	if err := tpl.Save(r.Context(), req.Output, s.cfg.Storage); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type normalizeRequest struct {
	Path    string            `json:"path"`
	Output  string            `json:"output"`
	Mapping map[string]string `json:"mapping"`
	Slides  string            `json:"slides,omitempty"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}
	if len(req.Mapping) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "mapping must not be empty"))
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
	result, err := deck.NormalizeSlideColors(p, req.Mapping, slides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sanitizeRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Slides string `json:"slides,omitempty"`
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req sanitizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}

	var slides map[int]bool
	if req.Slides != "" {
		parsed, err := errors.ParseSlideNumbers(req.Slides)
		if err != nil {
			s.writeError(w, err)
			return
		}
		slides = parsed
	}
	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := deck.SanitizeSlides(p, slides)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type makeLayoutRequest struct {
	Path         string `json:"path"`
	Output       string `json:"output"`
	FromSlide    int    `json:"from_slide"`
	Name         string `json:"name"`
	MasterIndex  int    `json:"master_index,omitempty"`
	AssignSlides string `json:"assign_slides,omitempty"`
}

func (s *Server) handleMakeLayout(w http.ResponseWriter, r *http.Request) {
	var req makeLayoutRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output, "name": req.Name}); err != nil {
		s.writeError(w, err)
		return
	}
	if req.MasterIndex == 0 {
		req.MasterIndex = 1
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layoutPart, err := deck.MakeLayoutFromSlide(p, req.FromSlide, req.Name, req.MasterIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.AssignSlides != "" {
		slides, err := errors.ParseSlideNumbers(req.AssignSlides)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := deck.AssignSlidesToLayout(p, sortedNumbers(slides), layoutPart); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"output":      req.Output,
		"layout_part": layoutPart,
	})
}

// partEdits is the palette/font override surface shared by the layout,
// master, and slide edit endpoints.
type partEdits struct {
	Palette     map[string]string `json:"palette,omitempty"`
	PaletteNone bool              `json:"palette_none,omitempty"`
	Font        string            `json:"font,omitempty"`
	FontsNone   bool              `json:"fonts_none,omitempty"`
}

func applyPartEdits(p *opc.Package, part string, edits partEdits) error {
	if len(edits.Palette) > 0 {
		if _, err := deck.ApplyPaletteToPart(p, part, edits.Palette); err != nil {
			return err
		}
	}
	if edits.PaletteNone {
		if _, err := deck.StripColorsFromPart(p, part); err != nil {
			return err
		}
	}
	if edits.Font != "" {
		if _, err := deck.SetFontFamilyForPart(p, part, edits.Font); err != nil {
			return err
		}
	}
	if edits.FontsNone {
		if _, err := deck.StripFontsFromPart(p, part); err != nil {
			return err
		}
	}
	return nil
}

type setLayoutRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Layout string `json:"layout"`
	partEdits
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	var req setLayoutRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output, "layout": req.Layout}); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layoutPart, err := deck.ResolveLayoutPart(p, req.Layout)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := applyPartEdits(p, layoutPart, req.partEdits); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type setMasterRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Master string `json:"master,omitempty"`
	partEdits
}

func (s *Server) handleSetMaster(w http.ResponseWriter, r *http.Request) {
	var req setMasterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Master == "" {
		req.Master = "1"
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	masterPart, err := deck.ResolveMasterPart(p, req.Master)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := applyPartEdits(p, masterPart, req.partEdits); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type setSlideRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Slides string `json:"slides"`
	Layout string `json:"layout,omitempty"`
	partEdits
}

func (s *Server) handleSetSlide(w http.ResponseWriter, r *http.Request) {
	var req setSlideRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output, "slides": req.Slides}); err != nil {
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

	parts := deck.SlideParts(p)
	numbers := sortedNumbers(slides)
	for _, num := range numbers {
		if num < 1 || num > len(parts) {
			s.writeError(w, errors.New(errors.ErrCodeOutOfRange, "slide number %d out of range (1-%d)", num, len(parts)))
			return
		}
	}
	for _, num := range numbers {
		if err := applyPartEdits(p, parts[num-1], req.partEdits); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Layout != "" {
		layoutPart, err := deck.ResolveLayoutPart(p, req.Layout)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := deck.AssignSlidesToLayout(p, numbers, layoutPart); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type setTextStylesRequest struct {
	Path      string   `json:"path"`
	Output    string   `json:"output"`
	Layout    string   `json:"layout,omitempty"`
	Master    string   `json:"master,omitempty"`
	TitleSize *float64 `json:"title_size,omitempty"`
	TitleBold *bool    `json:"title_bold,omitempty"`
	BodySize  *float64 `json:"body_size,omitempty"`
	BodyBold  *bool    `json:"body_bold,omitempty"`
}

func (s *Server) handleSetTextStyles(w http.ResponseWriter, r *http.Request) {
	var req setTextStylesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Layout == "" && req.Master == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "need a layout or master selector"))
		return
	}

	update := style.TextStyleUpdate{
		TitleSizePt: req.TitleSize,
		TitleBold:   req.TitleBold,
		BodySizePt:  req.BodySize,
		BodyBold:    req.BodyBold,
	}
	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	updated := 0
	if req.Layout != "" {
		layoutPart, err := deck.ResolveLayoutPart(p, req.Layout)
		if err != nil {
			s.writeError(w, err)
			return
		}
		n, err := deck.SetLayoutTextStyles(p, layoutPart, update)
		if err != nil {
			s.writeError(w, err)
			return
		}
		updated += n
	}
	if req.Master != "" {
		masterPart, err := deck.ResolveMasterPart(p, req.Master)
		if err != nil {
			s.writeError(w, err)
			return
		}
		n, err := deck.SetMasterTextStyles(p, masterPart, update)
		if err != nil {
			s.writeError(w, err)
			return
		}
		updated += n
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output":  req.Output,
		"updated": updated,
	})
}

type layoutImageRequest struct {
	Path     string   `json:"path"`
	Output   string   `json:"output"`
	Layout   string   `json:"layout"`
	ImageB64 string   `json:"image_b64"`
	Ext      string   `json:"ext"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	W        *float64 `json:"w,omitempty"`
	H        *float64 `json:"h,omitempty"`
	Units    string   `json:"units,omitempty"`
	Name     string   `json:"name,omitempty"`
}

func (req *layoutImageRequest) decodeImage() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decoding image_b64")
	}
	return data, nil
}

func (s *Server) handleSetLayoutBackground(w http.ResponseWriter, r *http.Request) {
	var req layoutImageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{
		"path": req.Path, "output": req.Output, "layout": req.Layout,
		"image_b64": req.ImageB64, "ext": req.Ext,
	}); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := req.decodeImage()
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layoutPart, err := deck.ResolveLayoutPart(p, req.Layout)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := deck.SetLayoutBackgroundImage(p, layoutPart, data, req.Ext); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

const emuPerInch = 914400

func (s *Server) handleSetLayoutImage(w http.ResponseWriter, r *http.Request) {
	var req layoutImageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{
		"path": req.Path, "output": req.Output, "layout": req.Layout,
		"image_b64": req.ImageB64, "ext": req.Ext,
	}); err != nil {
		s.writeError(w, err)
		return
	}

	data, err := req.decodeImage()
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layoutPart, err := deck.ResolveLayoutPart(p, req.Layout)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Box defaults to the full slide. Coordinates are inches unless
	// units is "emu".
	slideCx, slideCy := deck.SlideSize(p)
	var x, y, cx, cy int64
	if req.Units == "emu" {
		x = int64(floatOr(req.X, 0))
		y = int64(floatOr(req.Y, 0))
		cx = int64(floatOr(req.W, float64(slideCx)))
		cy = int64(floatOr(req.H, float64(slideCy)))
	} else {
		x = int64(floatOr(req.X, 0) * emuPerInch)
		y = int64(floatOr(req.Y, 0) * emuPerInch)
		cx = int64(floatOr(req.W, float64(slideCx)/emuPerInch) * emuPerInch)
		cy = int64(floatOr(req.H, float64(slideCy)/emuPerInch) * emuPerInch)
	}
	if err := deck.AddLayoutImageShape(p, layoutPart, data, req.Ext, x, y, cx, cy, req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": req.Output})
}

type autoLayoutRequest struct {
	Path        string            `json:"path"`
	Output      string            `json:"output"`
	GroupBy     string            `json:"group_by,omitempty"`
	Prefix      string            `json:"prefix,omitempty"`
	MasterIndex int               `json:"master_index,omitempty"`
	Assign      *bool             `json:"assign,omitempty"`
	StripColors bool              `json:"strip_colors,omitempty"`
	StripFonts  bool              `json:"strip_fonts,omitempty"`
	Palette     map[string]string `json:"palette,omitempty"`
}

func (s *Server) handleAutoLayout(w http.ResponseWriter, r *http.Request) {
	var req autoLayoutRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rep, err := report.Audit(p, nil, parseGroupBy(req.GroupBy))
	if err != nil {
		s.writeError(w, err)
		return
	}
	assign := true
	if req.Assign != nil {
		assign = *req.Assign
	}
	result, err := deck.AutoLayout(p, report.GroupNumbers(rep.Groups), deck.AutoLayoutOptions{
		Prefix:      req.Prefix,
		MasterIndex: req.MasterIndex,
		Assign:      assign,
		StripColors: req.StripColors,
		StripFonts:  req.StripFonts,
		Palette:     req.Palette,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output":          req.Output,
		"layouts_created": len(result.CreatedLayouts),
		"created_layouts": result.CreatedLayouts,
		"group_count":     result.GroupCount,
	})
}

type pruneLayoutsRequest struct {
	Path   string   `json:"path"`
	Output string   `json:"output"`
	Keep   []string `json:"keep,omitempty"`
}

func (s *Server) handlePruneLayouts(w http.ResponseWriter, r *http.Request) {
	var req pruneLayoutsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	keep := make(map[string]bool, len(req.Keep))
	for _, part := range req.Keep {
		keep[part] = true
	}
	result, err := deck.PruneUnusedLayouts(p, keep)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output":          req.Output,
		"removed":         len(result.RemovedLayouts),
		"removed_layouts": result.RemovedLayouts,
		"masters_updated": result.MastersUpdated,
	})
}

type reindexLayoutsRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
}

func (s *Server) handleReindexLayouts(w http.ResponseWriter, r *http.Request) {
	var req reindexLayoutsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := requireFields(map[string]string{"path": req.Path, "output": req.Output}); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.load(r.Context(), req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := deck.ReindexLayouts(p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), p, req.Output); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output":         req.Output,
		"layout_mapping": result.LayoutMapping,
	})
}

func sortedNumbers(set map[int]bool) []int {
	numbers := make([]int, 0, len(set))
	for n := range set {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
