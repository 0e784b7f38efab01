package opc

import (
	"encoding/xml"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
)

// ContentTypesPart is the name of the content-type registry part.
const ContentTypesPart = "[Content_Types].xml"

// ContentTypesNS is the namespace of the content-type registry.
const ContentTypesNS = "http://schemas.openxmlformats.org/package/2006/content-types"

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type typesXML struct {
	XMLName   xml.Name      `xml:"Types"`
	Xmlns     string        `xml:"xmlns,attr"`
	Defaults  []defaultXML  `xml:"Default"`
	Overrides []overrideXML `xml:"Override"`
}

// ContentTypes is the parsed [Content_Types].xml registry. Defaults map
// file extensions to MIME types; Overrides map absolute part paths and
// shadow Defaults for their part.
type ContentTypes struct {
	doc typesXML
}

// ParseContentTypes decodes a [Content_Types].xml part.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var doc typesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse %s", ContentTypesPart)
	}
	doc.Xmlns = ContentTypesNS
	return &ContentTypes{doc: doc}, nil
}

// Bytes re-encodes the registry as XML.
func (ct *ContentTypes) Bytes() []byte {
	out, _ := xml.Marshal(ct.doc)
	return append([]byte(xml.Header), out...)
}

// EnsureOverride registers a content-type override for the given part
// path. If an override with that path already exists it is left untouched
// regardless of its type (first writer wins), and false is returned.
func (ct *ContentTypes) EnsureOverride(partName, contentType string) bool {
	part := absPartName(partName)
	for _, o := range ct.doc.Overrides {
		if o.PartName == part {
			return false
		}
	}
	ct.doc.Overrides = append(ct.doc.Overrides, overrideXML{PartName: part, ContentType: contentType})
	return true
}

// RemoveOverride drops the override for the given part path, reporting
// whether anything was removed.
func (ct *ContentTypes) RemoveOverride(partName string) bool {
	part := absPartName(partName)
	kept := ct.doc.Overrides[:0]
	removed := false
	for _, o := range ct.doc.Overrides {
		if o.PartName == part {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	ct.doc.Overrides = kept
	return removed
}

// HasOverride reports whether an override exists for the given part path.
func (ct *ContentTypes) HasOverride(partName string) bool {
	part := absPartName(partName)
	for _, o := range ct.doc.Overrides {
		if o.PartName == part {
			return true
		}
	}
	return false
}

// EnsureDefault registers a default content type for the given extension.
// Extensions match case-insensitively and carry no leading dot. Existing
// defaults are left untouched; false is returned when nothing changed.
func (ct *ContentTypes) EnsureDefault(extension, contentType string) bool {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")
	for _, d := range ct.doc.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return false
		}
	}
	ct.doc.Defaults = append(ct.doc.Defaults, defaultXML{Extension: ext, ContentType: contentType})
	return true
}

// TypeOf resolves the content type of a part: an Override for its exact
// path wins, then a Default for its extension. Empty when neither
// matches.
func (ct *ContentTypes) TypeOf(partName string) string {
	part := absPartName(partName)
	for _, o := range ct.doc.Overrides {
		if o.PartName == part {
			return o.ContentType
		}
	}
	if i := strings.LastIndex(part, "."); i >= 0 {
		ext := part[i+1:]
		for _, d := range ct.doc.Defaults {
			if strings.EqualFold(d.Extension, ext) {
				return d.ContentType
			}
		}
	}
	return ""
}

// absPartName normalizes a part path to the absolute form used by
// Override entries (exactly one leading slash).
func absPartName(partName string) string {
	return "/" + NormalizePartName(partName)
}

// EnsureOverride loads the package's content-type registry, registers the
// override, and writes the registry back if it changed. Returns a
// NOT_FOUND error if the registry part is missing.
func EnsureOverride(pkg *Package, partName, contentType string) (bool, error) {
	ct, err := readContentTypes(pkg)
	if err != nil {
		return false, err
	}
	changed := ct.EnsureOverride(partName, contentType)
	if changed {
		pkg.Write(ContentTypesPart, ct.Bytes())
	}
	return changed, nil
}

// RemoveOverride loads the registry and removes the override for the part
// path, writing back on change. A missing registry part is treated as a
// no-op.
func RemoveOverride(pkg *Package, partName string) (bool, error) {
	if !pkg.Has(ContentTypesPart) {
		return false, nil
	}
	ct, err := readContentTypes(pkg)
	if err != nil {
		return false, err
	}
	removed := ct.RemoveOverride(partName)
	if removed {
		pkg.Write(ContentTypesPart, ct.Bytes())
	}
	return removed, nil
}

// EnsureDefault loads the registry and registers a default content type
// for the extension, writing back on change.
func EnsureDefault(pkg *Package, extension, contentType string) (bool, error) {
	ct, err := readContentTypes(pkg)
	if err != nil {
		return false, err
	}
	changed := ct.EnsureDefault(extension, contentType)
	if changed {
		pkg.Write(ContentTypesPart, ct.Bytes())
	}
	return changed, nil
}

// HasOverride reports whether the package's registry declares an override
// for the given part path. A missing registry yields false.
func HasOverride(pkg *Package, partName string) bool {
	if !pkg.Has(ContentTypesPart) {
		return false
	}
	ct, err := readContentTypes(pkg)
	if err != nil {
		return false
	}
	return ct.HasOverride(partName)
}

func readContentTypes(pkg *Package) (*ContentTypes, error) {
	data, err := pkg.Read(ContentTypesPart)
	if err != nil {
		return nil, err
	}
	return ParseContentTypes(data)
}
