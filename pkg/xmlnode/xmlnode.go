// Package xmlnode provides a small prefix-preserving XML document model
// for editing container parts in place.
//
// Parts use conventional namespace prefixes (p:, a:, r:) consistently, so
// the model keeps element and attribute names exactly as written instead
// of resolving them to namespace URLs. Unknown elements, attributes, and
// text pass through edits untouched, which keeps local rewrites from
// disturbing content the editor does not understand.
//
// The model mirrors the shape of the documents it edits: an element holds
// leading character data (Text), its children in order, and each child
// carries the character data that follows its end tag (Tail).
package xmlnode

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/deckforge/deckforge/pkg/errors"
)

// Header is the XML declaration written in front of serialized documents.
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

// Attr is one attribute with its name as written (prefix included).
type Attr struct {
	Name  string
	Value string
}

// Node is one element of a parsed document.
type Node struct {
	Tag      string // name as written, e.g. "p:cSld"
	Attrs    []Attr
	Children []*Node
	Text     string // character data before the first child
	Tail     string // character data after this element's end tag
}

// Parse decodes an XML document into a Node tree rooted at the document
// element. Comments, processing instructions, and directives are dropped.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "parse xml")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: rawName(t.Name)}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: rawName(a.Name), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New(errors.ErrCodeCorruptArchive, "multiple document elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New(errors.ErrCodeCorruptArchive, "unbalanced end tag </%s>", rawName(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			cur := stack[len(stack)-1]
			if len(cur.Children) > 0 {
				last := cur.Children[len(cur.Children)-1]
				last.Tail += string(t)
			} else {
				cur.Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "empty xml document")
	}
	if len(stack) != 0 {
		return nil, errors.New(errors.ErrCodeCorruptArchive, "unterminated element <%s>", stack[len(stack)-1].Tag)
	}
	return root, nil
}

func rawName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

// Bytes serializes the tree with the standard XML declaration.
func (n *Node) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	n.write(&buf)
	return buf.Bytes()
}

func (n *Node) write(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(escapeAttr(a.Value))
		buf.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	buf.WriteString(escapeText(n.Text))
	for _, child := range n.Children {
		child.write(buf)
		buf.WriteString(escapeText(child.Tail))
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#10;",
	"\t", "&#9;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
func escapeText(s string) string { return textEscaper.Replace(s) }

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	for _, a := range n.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr deletes the named attribute, reporting whether it existed.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Find walks a slash-separated child path ("p:cSld/p:spTree") and returns
// the first match at each step, or nil if any step has no match.
func (n *Node) Find(path string) *Node {
	cur := n
	for _, step := range strings.Split(path, "/") {
		var next *Node
		for _, child := range cur.Children {
			if child.Tag == step {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// FindAll returns every descendant (not the node itself) with the given
// tag, in document order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, child := range cur.Children {
			if child.Tag == tag {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

// Walk visits the node and all descendants in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// ParentMap returns a child-to-parent index for the subtree rooted at n.
// The map is a snapshot; structural edits invalidate it.
func (n *Node) ParentMap() map[*Node]*Node {
	parents := make(map[*Node]*Node)
	n.Walk(func(cur *Node) {
		for _, child := range cur.Children {
			parents[child] = cur
		}
	})
	return parents
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Remove deletes child from n's children, reporting whether it was found.
func (n *Node) Remove(child *Node) bool {
	i := n.IndexOf(child)
	if i < 0 {
		return false
	}
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
	return true
}

// Insert places child at position i among n's children.
func (n *Node) Insert(i int, child *Node) {
	if i < 0 {
		i = 0
	}
	if i > len(n.Children) {
		i = len(n.Children)
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
}

// Append adds child as the last of n's children.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	out := &Node{Tag: n.Tag, Text: n.Text, Tail: n.Tail}
	out.Attrs = append([]Attr(nil), n.Attrs...)
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// New returns a childless element with the given tag and attribute pairs
// ("name", "value", ...).
func New(tag string, attrPairs ...string) *Node {
	n := &Node{Tag: tag}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		n.Attrs = append(n.Attrs, Attr{Name: attrPairs[i], Value: attrPairs[i+1]})
	}
	return n
}

// LocalName strips the namespace prefix from a tag name.
func LocalName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}
