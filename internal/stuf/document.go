package stuf

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Document is a parsed StUF message. Lookups use space-delimited paths of
// prefix:localName segments; each segment descends exactly one level and the
// first matching child wins. Prefixes are resolved through the document's
// namespace table, so a message using different prefixes for the same URIs
// still resolves.
type Document struct {
	tree *etree.Document
	ns   map[string]string
}

// Parse reads an XML message and infers its namespace table from the xmlns
// declarations found in the tree, merged over the BG 03.10 defaults.
func Parse(data []byte) (*Document, error) {
	return ParseWithNamespaces(data, nil)
}

// ParseWithNamespaces reads an XML message with an explicit prefix table.
// Declarations found in the document itself take precedence.
func ParseWithNamespaces(data []byte, ns map[string]string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Err: err}
	}
	table := make(map[string]string, len(DefaultNamespaces)+len(ns))
	for p, uri := range DefaultNamespaces {
		table[p] = uri
	}
	for p, uri := range ns {
		table[p] = uri
	}
	if root := tree.Root(); root != nil {
		collectNamespaces(root, table)
	}
	return &Document{tree: tree, ns: table}, nil
}

func collectNamespaces(el *etree.Element, table map[string]string) {
	for _, a := range el.Attr {
		if a.Space == "xmlns" {
			table[a.Key] = a.Value
		}
	}
	for _, child := range el.ChildElements() {
		collectNamespaces(child, table)
	}
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element { return d.tree.Root() }

// Find resolves a space-delimited path from the document root.
// Returns nil when any segment does not match.
func (d *Document) Find(path string) *etree.Element {
	return d.FindIn(d.tree.Root(), path)
}

// FindIn resolves a space-delimited path relative to scope.
func (d *Document) FindIn(scope *etree.Element, path string) *etree.Element {
	if scope == nil {
		return nil
	}
	cur := scope
	for _, seg := range strings.Fields(path) {
		// "." names the scope element itself.
		if seg == "." {
			continue
		}
		// The root element is consumed by the first segment when it matches,
		// mirroring how absolute paths name the envelope itself.
		if cur == d.tree.Root() && d.matches(cur, seg) {
			continue
		}
		cur = d.firstChild(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FindAll resolves the path like Find, but returns every sibling matching the
// final segment instead of only the first.
func (d *Document) FindAll(scope *etree.Element, path string) []*etree.Element {
	if scope == nil {
		return nil
	}
	segs := strings.Fields(path)
	if len(segs) == 0 {
		return nil
	}
	parent := scope
	if len(segs) > 1 {
		parent = d.FindIn(scope, strings.Join(segs[:len(segs)-1], " "))
		if parent == nil {
			return nil
		}
	}
	last := segs[len(segs)-1]
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if d.matches(child, last) {
			out = append(out, child)
		}
	}
	return out
}

// GetValue returns the text content at path relative to scope. The second
// return is false when the path does not resolve.
func (d *Document) GetValue(scope *etree.Element, path string) (string, bool) {
	el := d.FindIn(scope, path)
	if el == nil {
		return "", false
	}
	return el.Text(), true
}

// GetAttribute returns the named attribute of the element at path.
func (d *Document) GetAttribute(scope *etree.Element, path, attr string) (string, bool) {
	el := d.FindIn(scope, path)
	if el == nil {
		return "", false
	}
	return d.Attribute(el, attr)
}

// Attribute reads an attribute off an element, resolving a prefixed name
// through the namespace table.
func (d *Document) Attribute(el *etree.Element, name string) (string, bool) {
	prefix, local := splitName(name)
	for _, a := range el.Attr {
		if a.Key != local {
			continue
		}
		if prefix == "" {
			if a.Space == "" {
				return a.Value, true
			}
			continue
		}
		if a.Space == prefix || a.NamespaceURI() == d.ns[prefix] {
			return a.Value, true
		}
	}
	return "", false
}

// SetValue replaces the text content of the element at path.
func (d *Document) SetValue(path, value string) error {
	el := d.Find(path)
	if el == nil {
		return &PathError{Path: path}
	}
	el.SetText(value)
	return nil
}

// Remove detaches the element at path from its parent. Removing a path that
// does not resolve is not an error; templates use this to drop optional
// match criteria. Wrapper elements left without children or text are
// removed along with it, so dropping every nested criterion never ships an
// empty wrapper.
func (d *Document) Remove(path string) {
	el := d.Find(path)
	if el == nil {
		return
	}
	for el != nil && el != d.tree.Root() {
		parent := el.Parent()
		if parent == nil {
			break
		}
		parent.RemoveChild(el)
		if len(parent.ChildElements()) > 0 || strings.TrimSpace(parent.Text()) != "" {
			break
		}
		el = parent
	}
}

// String serializes the document without added whitespace.
func (d *Document) String() (string, error) {
	d.tree.Indent(etree.NoIndent)
	return d.tree.WriteToString()
}

// Pretty serializes the document with two-space indentation, for logs.
func (d *Document) Pretty() (string, error) {
	copied := d.tree.Copy()
	copied.Indent(2)
	return copied.WriteToString()
}

func (d *Document) firstChild(parent *etree.Element, seg string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if d.matches(child, seg) {
			return child
		}
	}
	return nil
}

func (d *Document) matches(el *etree.Element, seg string) bool {
	prefix, local := splitName(seg)
	if el.Tag != local {
		return false
	}
	if prefix == "" {
		return el.Space == ""
	}
	if uri, ok := d.ns[prefix]; ok {
		return el.NamespaceURI() == uri
	}
	return el.Space == prefix
}

func splitName(name string) (prefix, local string) {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// Mapping sub-expressions take one of two forms: a self filter
// ".[@attr='v']" that keeps the element only when the attribute matches, or
// a descendant search ".//ns:tag[@attr='v']" that returns the first matching
// element anywhere below.
var subExprRe = regexp.MustCompile(`^(\.|\.//[\w.:-]+)(?:\[@([\w.:-]+)='([^']*)'\])?$`)

// FindByExpression evaluates a mapping sub-expression relative to el.
func (d *Document) FindByExpression(el *etree.Element, expr string) *etree.Element {
	if el == nil {
		return nil
	}
	m := subExprRe.FindStringSubmatch(expr)
	if m == nil {
		return nil
	}
	target, attr, want := m[1], m[2], m[3]
	if target == "." {
		if attr == "" {
			return el
		}
		if got, ok := d.Attribute(el, attr); ok && got == want {
			return el
		}
		return nil
	}
	seg := strings.TrimPrefix(target, ".//")
	return d.findDescendant(el, seg, attr, want)
}

func (d *Document) findDescendant(el *etree.Element, seg, attr, want string) *etree.Element {
	for _, child := range el.ChildElements() {
		if d.matches(child, seg) {
			if attr == "" {
				return child
			}
			if got, ok := d.Attribute(child, attr); ok && got == want {
				return child
			}
		}
		if found := d.findDescendant(child, seg, attr, want); found != nil {
			return found
		}
	}
	return nil
}
