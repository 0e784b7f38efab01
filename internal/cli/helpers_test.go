package cli

import (
	"context"
	"testing"
)

func TestOpenOrNewPackageFresh(t *testing.T) {
	p, err := openOrNewPackage(context.Background(), "")
	if err != nil {
		t.Fatalf("openOrNewPackage: %v", err)
	}
	if _, err := p.Read("ppt/presentation.xml"); err != nil {
		t.Errorf("fresh package is missing the presentation part: %v", err)
	}
}

func TestSavePackageMemRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := openOrNewPackage(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := savePackage(ctx, p, "mem://cli/roundtrip.potx"); err != nil {
		t.Fatalf("savePackage: %v", err)
	}

	reopened, err := openPackage(ctx, "mem://cli/roundtrip.potx")
	if err != nil {
		t.Fatalf("openPackage: %v", err)
	}
	if _, err := reopened.Read("ppt/presentation.xml"); err != nil {
		t.Errorf("reopened package is missing the presentation part: %v", err)
	}
}

func TestPartEditFlagsValidate(t *testing.T) {
	tests := []struct {
		name    string
		flags   partEditFlags
		wantErr bool
	}{
		{"empty", partEditFlags{}, false},
		{"palette only", partEditFlags{palette: "p.json"}, false},
		{"palette conflict", partEditFlags{palette: "p.json", paletteNone: true}, true},
		{"font conflict", partEditFlags{font: "Arial", fontsNone: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flags.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlideSet(t *testing.T) {
	set, err := slideSet("")
	if err != nil || set != nil {
		t.Errorf("slideSet(\"\") = %v, %v; want nil, nil", set, err)
	}

	set, err = slideSet("1,3-4")
	if err != nil {
		t.Fatalf("slideSet: %v", err)
	}
	for _, n := range []int{1, 3, 4} {
		if !set[n] {
			t.Errorf("slide %d missing from set %v", n, set)
		}
	}
	if set[2] {
		t.Errorf("slide 2 unexpectedly in set %v", set)
	}
}
