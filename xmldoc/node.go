// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xmldoc

import "strings"

// A Node is an element of a parsed XML document.
type Node struct {
	// Name is the local name of the element.
	Name string
	// Attrs holds the attributes of the element, keyed by local name.
	Attrs map[string]string
	// Text is the character data directly inside the element, with
	// leading and trailing white space removed.
	Text string
	// Raw is the character data directly inside the element, verbatim.
	Raw string
	// Children holds the child elements, in document order.
	Children []*Node
}

// Get returns the value of the field called name: the attribute of that
// name if there is one, otherwise the text of the first direct child
// element of that name. A child's text is returned verbatim, white space
// included, as attribute values are. The boolean is false if neither
// exists, or if n is nil.
func (n *Node) Get(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	if v, ok := n.Attrs[name]; ok {
		return v, true
	}
	if c := n.Child(name); c != nil {
		return c.Raw, true
	}
	return "", false
}

// Child returns the first direct child element called name, or nil.
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

// String returns the element name and attribute count, which is enough
// to tell documents apart in logs.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(n.Name)
	if len(n.Attrs) > 0 {
		b.WriteString(" ...")
	}
	b.WriteByte('>')
	return b.String()
}
