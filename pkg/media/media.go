// Package media adds binary image parts to a container.
package media

import (
	"sort"
	"strconv"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
)

const mediaPrefix = "ppt/media/"

// ImageTypes maps supported image extensions to their MIME types.
var ImageTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
}

// AddImagePart writes the image under the next free ppt/media/imageN.<ext>
// name, registers a content-type Default for the extension, and returns
// the part name. The extension may carry a leading dot and any case.
func AddImagePart(p *opc.Package, data []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	mime, ok := ImageTypes[ext]
	if !ok {
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported image type: %q", ext)
	}
	if len(data) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty image data")
	}

	partName := nextMediaPart(p, ext)
	p.Write(partName, data)
	if _, err := opc.EnsureDefault(p, ext, mime); err != nil {
		return "", err
	}
	return partName, nil
}

// MediaParts returns all parts under ppt/media in lexicographic order.
func MediaParts(p *opc.Package) []string {
	var out []string
	for _, part := range p.Parts() {
		if strings.HasPrefix(part, mediaPrefix) {
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}

// nextMediaPart allocates imageN numbering per extension by scanning the
// current media parts, gap-tolerant.
func nextMediaPart(p *opc.Package, ext string) string {
	maxN := 0
	suffix := "." + ext
	for _, part := range MediaParts(p) {
		name := part[strings.LastIndexByte(part, '/')+1:]
		if !strings.HasPrefix(name, "image") || !strings.HasSuffix(name, suffix) {
			continue
		}
		raw := strings.TrimSuffix(strings.TrimPrefix(name, "image"), suffix)
		if n, err := strconv.Atoi(raw); err == nil && n > maxN {
			maxN = n
		}
	}
	return mediaPrefix + "image" + strconv.Itoa(maxN+1) + suffix
}
