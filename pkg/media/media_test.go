package media

import (
	"testing"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
)

const minimalTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="xml" ContentType="application/xml"/></Types>`

func mediaPkg() *opc.Package {
	p := opc.New()
	p.Write(opc.ContentTypesPart, []byte(minimalTypes))
	return p
}

func TestAddImagePart(t *testing.T) {
	p := mediaPkg()
	part, err := AddImagePart(p, []byte{0x89, 0x50, 0x4e, 0x47}, ".PNG")
	if err != nil {
		t.Fatalf("AddImagePart() error = %v", err)
	}
	if part != "ppt/media/image1.png" {
		t.Errorf("part = %q, want ppt/media/image1.png", part)
	}
	if !p.Has(part) {
		t.Error("image part not written")
	}

	types, err := p.Read(opc.ContentTypesPart)
	if err != nil {
		t.Fatalf("Read content types: %v", err)
	}
	ct, err := opc.ParseContentTypes(types)
	if err != nil {
		t.Fatalf("ParseContentTypes() error = %v", err)
	}
	if got := ct.TypeOf("ppt/media/image1.png"); got != "image/png" {
		t.Errorf("TypeOf = %q, want image/png", got)
	}
}

func TestAddImagePartNumbersPerExtension(t *testing.T) {
	p := mediaPkg()
	p.Write("ppt/media/image3.png", []byte{1})
	p.Write("ppt/media/image9.jpg", []byte{1})

	part, err := AddImagePart(p, []byte{1, 2, 3}, "png")
	if err != nil {
		t.Fatalf("AddImagePart() error = %v", err)
	}
	if part != "ppt/media/image4.png" {
		t.Errorf("part = %q, want ppt/media/image4.png (jpg numbering is separate)", part)
	}
}

func TestAddImagePartRejectsUnsupportedType(t *testing.T) {
	p := mediaPkg()
	if _, err := AddImagePart(p, []byte{1}, "svg"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
	if _, err := AddImagePart(p, nil, "png"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
