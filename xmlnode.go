package pptxjson

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Node is a parsed XML element. Element and attribute names are stored by
// local name, except attributes in the officeDocument relationships namespace
// which keep an "r:" prefix (r:embed, r:id, r:link).
//
// All accessors are safe to call on a nil *Node, so chained lookups never
// need intermediate checks.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
	// Order is the 1-based position of the element among its parent's
	// element children.
	Order int
}

// parseNode decodes an XML part into a node tree.
func parseNode(data []byte) (*Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var root *Node
	var stack []*Node

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, attr := range t.Attr {
				if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
					continue
				}
				if n.Attrs == nil {
					n.Attrs = make(map[string]string, len(t.Attr))
				}
				key := attr.Name.Local
				if attr.Name.Space == nsOfficeDocRels {
					key = "r:" + key
				}
				n.Attrs[key] = attr.Value
			}
			if len(stack) == 0 {
				if root == nil {
					root = n
				}
			} else {
				parent := stack[len(stack)-1]
				n.Order = len(parent.Children) + 1
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, errors.New("xml part has no root element")
	}
	return root, nil
}

// Child returns the first child element with the given local name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every child element with the given local name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Path walks a chain of child names and returns nil as soon as one is missing.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Has reports whether a child element with the given name exists.
func (n *Node) Has(name string) bool {
	return n.Child(name) != nil
}

// Attr returns the attribute value or "" when absent.
func (n *Node) Attr(name string) string {
	v, _ := n.LookupAttr(name)
	return v
}

// LookupAttr returns the attribute value and whether it was present.
func (n *Node) LookupAttr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// IntAttr parses an integer attribute. Absent or malformed values report false.
func (n *Node) IntAttr(name string) (int64, bool) {
	v, ok := n.LookupAttr(name)
	if !ok {
		return 0, false
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// FlagAttr reports whether a boolean attribute is set to "1" or "true".
func (n *Node) FlagAttr(name string) bool {
	v := n.Attr(name)
	return v == "1" || v == "true"
}

// DeclaredOrder returns the element's explicit order attribute when it parses,
// otherwise its document position.
func (n *Node) DeclaredOrder() int {
	if n == nil {
		return 0
	}
	if v, ok := n.IntAttr("order"); ok {
		return int(v)
	}
	return n.Order
}
