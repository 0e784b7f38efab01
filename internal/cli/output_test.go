package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatSlideRanges(t *testing.T) {
	tests := []struct {
		name   string
		slides []int
		want   string
	}{
		{"empty", nil, ""},
		{"single", []int{3}, "3"},
		{"run", []int{1, 2, 3}, "1-3"},
		{"mixed", []int{1, 2, 3, 7, 9, 10}, "1-3, 7, 9-10"},
		{"gaps", []int{2, 4, 6}, "2, 4, 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSlideRanges(tt.slides); got != tt.want {
				t.Errorf("formatSlideRanges(%v) = %q, want %q", tt.slides, got, tt.want)
			}
		})
	}
}

func TestWriteDocumentJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := writeDocument(map[string]int{"a": 1}, path, formatJSON, false); err != nil {
		t.Fatalf("writeDocument: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != `{"a":1}` {
		t.Errorf("content = %q", got)
	}
}

func TestWriteDocumentYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := writeDocument(map[string]int{"a": 1}, path, formatYAML, false); err != nil {
		t.Fatalf("writeDocument: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "a: 1" {
		t.Errorf("content = %q", got)
	}
}

func TestWriteDocumentRejectsUnknownFormat(t *testing.T) {
	if err := writeDocument(nil, "", "toml", false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoadJSONMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.json")
	if err := os.WriteFile(path, []byte(`{"accent1":"#112233"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	mapping, err := loadJSONMap(path)
	if err != nil {
		t.Fatalf("loadJSONMap: %v", err)
	}
	if mapping["accent1"] != "#112233" {
		t.Errorf("mapping = %v", mapping)
	}
}

func TestLoadJSONMapRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadJSONMap(path); err == nil {
		t.Fatal("expected error for non-object JSON")
	}
}

func TestParseGroupByFlag(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"p,l", []string{"p", "l"}},
		{"pbl", []string{"p", "b", "l"}},
		{" p , b ", []string{"p", "b"}},
	}
	for _, tt := range tests {
		got := parseGroupByFlag(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseGroupByFlag(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseGroupByFlag(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
