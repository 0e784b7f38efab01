package opc

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func zipBytes(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("create %s: %v", e[0], err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatalf("write %s: %v", e[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = string(content)
	}
	return out
}

func TestOpenRejectsCorruptArchive(t *testing.T) {
	if _, err := Open([]byte("not a zip")); err == nil {
		t.Fatal("Open should fail on garbage input")
	}
}

func TestRoundTrip(t *testing.T) {
	entries := [][2]string{
		{"[Content_Types].xml", "<Types/>"},
		{"ppt/presentation.xml", "<p:presentation/>"},
		{"ppt/theme/theme1.xml", "<a:theme/>"},
	}
	pkg, err := Open(zipBytes(t, entries))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	saved, err := pkg.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := readZip(t, saved)
	if len(got) != len(entries) {
		t.Fatalf("part count = %d, want %d", len(got), len(entries))
	}
	for _, e := range entries {
		if got[e[0]] != e[1] {
			t.Errorf("part %s = %q, want %q", e[0], got[e[0]], e[1])
		}
	}

	// Order survives the round trip.
	want := []string{"[Content_Types].xml", "ppt/presentation.xml", "ppt/theme/theme1.xml"}
	names := pkg.Parts()
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Parts()[%d] = %s, want %s", i, names[i], name)
		}
	}
}

func TestWriteUpsertKeepsPosition(t *testing.T) {
	pkg := New()
	pkg.Write("a.xml", []byte("a"))
	pkg.Write("b.xml", []byte("b"))
	pkg.Write("a.xml", []byte("a2"))

	names := pkg.Parts()
	if len(names) != 2 || names[0] != "a.xml" || names[1] != "b.xml" {
		t.Fatalf("Parts() = %v", names)
	}
	data, err := pkg.Read("a.xml")
	if err != nil || string(data) != "a2" {
		t.Fatalf("Read(a.xml) = %q, %v", data, err)
	}
}

func TestDeleteThenRecreateAppendsAtEnd(t *testing.T) {
	pkg := New()
	pkg.Write("a.xml", []byte("a"))
	pkg.Write("b.xml", []byte("b"))
	pkg.Delete("a.xml")

	if pkg.Has("a.xml") {
		t.Fatal("a.xml should be gone after Delete")
	}

	pkg.Write("a.xml", []byte("a3"))
	names := pkg.Parts()
	if len(names) != 2 || names[0] != "b.xml" || names[1] != "a.xml" {
		t.Fatalf("Parts() = %v, want [b.xml a.xml]", names)
	}
}

func TestNameNormalization(t *testing.T) {
	pkg := New()
	pkg.Write("/ppt/slides/slide1.xml", []byte("s"))

	if !pkg.Has("ppt/slides/slide1.xml") {
		t.Error("slash-prefixed write should be visible without the slash")
	}
	if !pkg.Has("/ppt/slides/slide1.xml") {
		t.Error("slash-prefixed lookup should match")
	}
	if _, err := pkg.Read("missing.xml"); err == nil {
		t.Error("Read of missing part should fail")
	}
}
