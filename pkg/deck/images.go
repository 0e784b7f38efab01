package deck

import (
	"strconv"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/media"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/xmlnode"
)

// SetLayoutBackgroundImage stores the image as a media part and makes it
// the layout's stretched background fill, replacing any existing
// background definition.
func SetLayoutBackgroundImage(p *opc.Package, layoutPart string, imageData []byte, ext string) error {
	imagePart, err := media.AddImagePart(p, imageData, ext)
	if err != nil {
		return err
	}
	rel, err := opc.EnsureRelationship(p, layoutPart, ImageRelType, opc.RelativeTarget(layoutPart, imagePart))
	if err != nil {
		return err
	}

	root, err := parsePart(p, layoutPart)
	if err != nil {
		return err
	}
	body := root.Find("p:cSld")
	if body == nil {
		return errors.New(errors.ErrCodeInconsistent, "layout %s is missing cSld", layoutPart)
	}
	bg := body.Find("p:bg")
	if bg == nil {
		bg = xmlnode.New("p:bg")
		body.Insert(0, bg)
	}
	bg.Children = nil

	blip := xmlnode.New("a:blip", "r:embed", rel.ID)
	blipFill := xmlnode.New("a:blipFill")
	blipFill.Append(blip)
	stretch := xmlnode.New("a:stretch")
	stretch.Append(xmlnode.New("a:fillRect"))
	blipFill.Append(stretch)
	bgPr := xmlnode.New("p:bgPr")
	bgPr.Append(blipFill)
	bg.Append(bgPr)

	writePart(p, layoutPart, root)
	return nil
}

// AddLayoutImageShape stores the image as a media part and appends a
// positioned picture shape to the layout. Coordinates and extents are in
// EMU. An empty name defaults to "Picture <id>".
func AddLayoutImageShape(p *opc.Package, layoutPart string, imageData []byte, ext string, x, y, cx, cy int64, name string) error {
	imagePart, err := media.AddImagePart(p, imageData, ext)
	if err != nil {
		return err
	}
	rel, err := opc.EnsureRelationship(p, layoutPart, ImageRelType, opc.RelativeTarget(layoutPart, imagePart))
	if err != nil {
		return err
	}

	root, err := parsePart(p, layoutPart)
	if err != nil {
		return err
	}
	spTree := root.Find("p:cSld/p:spTree")
	if spTree == nil {
		return errors.New(errors.ErrCodeInconsistent, "layout %s is missing spTree", layoutPart)
	}

	shapeID := nextShapeID(spTree)
	if name == "" {
		name = "Picture " + strconv.Itoa(shapeID)
	}

	pic := xmlnode.New("p:pic")
	nvPicPr := xmlnode.New("p:nvPicPr")
	nvPicPr.Append(xmlnode.New("p:cNvPr", "id", strconv.Itoa(shapeID), "name", name))
	nvPicPr.Append(xmlnode.New("p:cNvPicPr"))
	nvPicPr.Append(xmlnode.New("p:nvPr"))
	pic.Append(nvPicPr)

	blipFill := xmlnode.New("p:blipFill")
	blipFill.Append(xmlnode.New("a:blip", "r:embed", rel.ID))
	stretch := xmlnode.New("a:stretch")
	stretch.Append(xmlnode.New("a:fillRect"))
	blipFill.Append(stretch)
	pic.Append(blipFill)

	spPr := xmlnode.New("p:spPr")
	xfrm := xmlnode.New("a:xfrm")
	xfrm.Append(xmlnode.New("a:off", "x", strconv.FormatInt(x, 10), "y", strconv.FormatInt(y, 10)))
	xfrm.Append(xmlnode.New("a:ext", "cx", strconv.FormatInt(cx, 10), "cy", strconv.FormatInt(cy, 10)))
	spPr.Append(xfrm)
	prstGeom := xmlnode.New("a:prstGeom", "prst", "rect")
	prstGeom.Append(xmlnode.New("a:avLst"))
	spPr.Append(prstGeom)
	pic.Append(spPr)

	spTree.Append(pic)
	writePart(p, layoutPart, root)
	return nil
}

// nextShapeID returns max cNvPr id in the shape tree plus one.
func nextShapeID(spTree *xmlnode.Node) int {
	maxID := 0
	for _, node := range spTree.FindAll("p:cNvPr") {
		if v, err := strconv.Atoi(node.Attr("id")); err == nil && v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}
