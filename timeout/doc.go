// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines the timeout policy applied to an HTTP transfer.
//
// A plain connection timeout only bounds how long it takes to reach the
// remote host, and says nothing about a transfer which stalls once it has
// started. The Policy type therefore pairs a connection timeout with a
// low-speed limit: if the transfer runs below LowSpeedLimit bytes per
// second for LowSpeedTime, the transport aborts it with ErrLowSpeed.
package timeout
