// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xmldoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrNoRoot is returned when the input contains no root element, for
// example because it is empty.
var ErrNoRoot = errors.New("netreq/xmldoc: no root element")

// A Parser turns a raw response body into a document tree.
//
// Implementations of Parser must be safe for concurrent use by multiple
// goroutines.
type Parser interface {
	Parse(b []byte) (*Node, error)
}

// The ParserFunc type is an adapter to allow the use of ordinary
// functions as parsers.
type ParserFunc func([]byte) (*Node, error)

// Parse calls f(b).
func (f ParserFunc) Parse(b []byte) (*Node, error) {
	return f(b)
}

// DefaultParser parses with Parse.
var DefaultParser Parser = ParserFunc(Parse)

// Parse parses b and returns its root element. Content after the root
// element is ignored.
func Parse(b []byte) (*Node, error) {
	d := xml.NewDecoder(bytes.NewReader(b))
	d.CharsetReader = charset.NewReaderLabel

	var stack []*Node
	var text []*strings.Builder
	for {
		tok, err := d.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return nil, fmt.Errorf("netreq/xmldoc: unclosed element <%s>", stack[len(stack)-1].Name)
			}
			return nil, ErrNoRoot
		}
		if err != nil {
			return nil, fmt.Errorf("netreq/xmldoc: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.Raw = text[len(text)-1].String()
			n.Text = strings.TrimSpace(n.Raw)
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			if len(stack) == 0 {
				return n, nil
			}
		}
	}
}
