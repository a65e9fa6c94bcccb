// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies the errors that end an HTTP transfer.
// This is handy for logging why a request failed, and for callers which
// want to layer their own retry decisions on top of a failed request.
//
// Package transient is lightweight; besides the standard library it only
// depends on the netreq request and timeout packages for their sentinel
// errors.
package transient
