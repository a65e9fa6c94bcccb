// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package xmldoc parses XML response bodies into a small queryable tree.
//
// Servers answering netreq XML requests describe the outcome on the root
// element, usually as attributes:
//
//	<connect success="yes" info="Logged in" userid="42"/>
//
// Node.Get looks a field up by name, first among the attributes of the
// node and then among the text of its direct child elements, so both
// shapes of document work the same way.
//
// Documents declaring a non-UTF-8 encoding are transcoded to UTF-8 while
// parsing.
package xmldoc
