// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"context"

	"github.com/gogama/netreq/request"
	"github.com/gogama/netreq/xmldoc"
)

// ConnectivityMessage is the Info of an XMLRequest whose response could
// not be understood: the transfer failed, the body was not XML, or the
// document has no success field.
const ConnectivityMessage = "Unable to connect to the server. Check your internet connection or try again later."

// An XMLRequest is an HTTPRequest whose response is an XML document
// carrying its own verdict. The document's success field must equal
// "yes" for the request to be successful, and its info field is a
// human-readable message.
//
// Always check Success before trusting Result. All three accessors are
// valid only once Done reports true.
type XMLRequest struct {
	*HTTPRequest

	// Parser turns the response body into a document. If Parser is nil,
	// xmldoc.DefaultParser is used.
	Parser xmldoc.Parser

	result  *xmldoc.Node
	success bool
	info    string
}

// NewXMLRequest returns a caller-owned XML request for url with the
// default priority.
func NewXMLRequest(url string) *XMLRequest {
	return NewXMLRequestWithPriority(url, request.PriorityDefault, false)
}

// NewXMLRequestWithPriority returns an XML request for url with the given
// priority and memory policy.
func NewXMLRequestWithPriority(url string, priority int, manageMemory bool) *XMLRequest {
	x := &XMLRequest{
		HTTPRequest: NewHTTPRequestWithPriority(url, priority, manageMemory),
	}
	x.SetHooks(request.Hooks{
		Before:    x.beforeOperation,
		Operation: x.operation,
		After:     x.afterOperation,
	})
	return x
}

// Result returns the parsed document, or nil if the response could not
// be parsed.
func (x *XMLRequest) Result() *xmldoc.Node {
	return x.result
}

// Success reports whether the server answered with success="yes".
func (x *XMLRequest) Success() bool {
	return x.success
}

// Info returns the server's info message, or ConnectivityMessage if the
// response could not be understood.
func (x *XMLRequest) Info() string {
	return x.info
}

// Release drops the parsed document and the response body.
func (x *XMLRequest) Release() {
	x.result = nil
	x.HTTPRequest.Release()
}

func (x *XMLRequest) operation(ctx context.Context) {
	body := x.download(ctx)
	x.body = body
	x.settle(x.err == nil)
	doc, err := x.parser().Parse(body)
	if err != nil {
		log.Debugf("%s: unusable response: %v", x, err)
		return
	}
	x.result = doc
}

func (x *XMLRequest) afterOperation(ctx context.Context) {
	x.success, x.info = verdict(x.result)
	x.HTTPRequest.afterOperation(ctx)
}

func (x *XMLRequest) parser() xmldoc.Parser {
	if x.Parser == nil {
		return xmldoc.DefaultParser
	}

	return x.Parser
}

// verdict reads the success and info fields of doc. A missing document
// and a document without a success field are reported the same way.
func verdict(doc *xmldoc.Node) (bool, string) {
	s, ok := doc.Get("success")
	if !ok {
		return false, ConnectivityMessage
	}
	info, _ := doc.Get("info")
	return s == "yes", info
}
