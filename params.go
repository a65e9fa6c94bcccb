// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"net/url"
	"strings"
)

// Params is an insertion-ordered mapping from parameter name to value,
// sent form-encoded as the body of an HTTP request. The zero value is an
// empty mapping ready to use.
//
// Params is not safe for concurrent modification. A request's Params must
// not change once the request has been added to a Manager.
type Params struct {
	keys   []string
	values map[string]string
}

// Set sets the value of key. Setting an existing key replaces its value
// but keeps its original position.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value of key, and whether it is set.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Encode percent-encodes every name and value and joins them as
// "k1=v1&k2=v2", in insertion order. Only unreserved characters
// (letters, digits, '-', '.', '_' and '~') are left as they are; a space
// becomes "%20", not "+".
func (p *Params) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(k))
		b.WriteByte('=')
		b.WriteString(escape(p.values[k]))
	}
	return b.String()
}

// escape is url.QueryEscape with spaces encoded as %20. QueryEscape
// already turns a literal '+' into %2B, so the replacement is safe.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
