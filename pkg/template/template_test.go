package template

import (
	"context"
	"strings"
	"testing"

	"github.com/deckforge/deckforge/pkg/deck"
	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/storage"
)

func TestNewTemplateIsValid(t *testing.T) {
	tpl := New()

	report, err := tpl.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.OK() {
		t.Fatalf("base template invalid: %v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", report.Warnings)
	}
}

func TestNewTemplateHasWorkingTopology(t *testing.T) {
	tpl := New()
	p := tpl.Package()

	slides := deck.SlideParts(p)
	if len(slides) != 1 || slides[0] != "ppt/slides/slide1.xml" {
		t.Errorf("slides = %v", slides)
	}
	layouts := deck.LayoutParts(p)
	if len(layouts) != 1 {
		t.Errorf("layouts = %v", layouts)
	}
	master, err := deck.LayoutMasterPart(p, layouts[0])
	if err != nil || master != "ppt/slideMasters/slideMaster1.xml" {
		t.Errorf("master = %q, err = %v", master, err)
	}
	if cx, cy := deck.SlideSize(p); cx != 12192000 || cy != 6858000 {
		t.Errorf("slide size = %dx%d", cx, cy)
	}
}

func TestThemeRoundTrip(t *testing.T) {
	tpl := New()

	th, err := tpl.Theme()
	if err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if got := th.Color("accent1"); got != "#4472C4" {
		t.Errorf("accent1 = %q", got)
	}
	if err := th.SetColor("accent1", "#123456"); err != nil {
		t.Fatalf("SetColor: %v", err)
	}

	data, err := tpl.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	reopened, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	th2, err := reopened.Theme()
	if err != nil {
		t.Fatalf("Theme after reopen: %v", err)
	}
	if got := th2.Color("accent1"); got != "#123456" {
		t.Errorf("accent1 after round trip = %q", got)
	}
}

func TestSaveAndOpenViaMemURI(t *testing.T) {
	ctx := context.Background()
	uri := "mem://templates/roundtrip.potx"

	tpl := New()
	if err := tpl.Save(ctx, uri, storage.Config{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(ctx, uri, storage.Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.ThemePart() != "ppt/theme/theme1.xml" {
		t.Errorf("theme part = %q", reopened.ThemePart())
	}
}

func TestValidateReportsDanglingRelTarget(t *testing.T) {
	tpl := New()
	tpl.Package().Delete("ppt/slideLayouts/slideLayout1.xml")

	report, err := tpl.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if report.OK() {
		t.Fatal("expected errors for dangling rel targets")
	}
	found := false
	for _, msg := range report.Errors {
		if strings.Contains(msg, "slideLayout1.xml") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want mention of slideLayout1.xml", report.Errors)
	}
}

func TestValidateWarnsOnMissingOverride(t *testing.T) {
	tpl := New()
	if _, err := opc.RemoveOverride(tpl.Package(), tpl.ThemePart()); err != nil {
		t.Fatalf("RemoveOverride: %v", err)
	}

	report, err := tpl.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.OK() {
		t.Fatalf("override removal should not be an error: %v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", report.Warnings)
	}
}

func TestBytesRestoresThemeOverride(t *testing.T) {
	tpl := New()
	if _, err := opc.RemoveOverride(tpl.Package(), tpl.ThemePart()); err != nil {
		t.Fatalf("RemoveOverride: %v", err)
	}

	data, err := tpl.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	reopened, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if !opc.HasOverride(reopened.Package(), reopened.ThemePart()) {
		t.Error("theme override not restored on save")
	}
}

func TestFromPackagePrefersTheme1(t *testing.T) {
	p := newBasePackage()
	p.Write("ppt/theme/theme0.xml", []byte(baseTheme))

	tpl, err := FromPackage(p)
	if err != nil {
		t.Fatalf("FromPackage: %v", err)
	}
	if tpl.ThemePart() != "ppt/theme/theme1.xml" {
		t.Errorf("theme part = %q", tpl.ThemePart())
	}
}

func TestFromPackageWithoutTheme(t *testing.T) {
	p := opc.New()
	p.Write("ppt/presentation.xml", []byte(basePresentation))

	_, err := FromPackage(p)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
