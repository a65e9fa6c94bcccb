// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import "github.com/gogama/netreq/internal/logging"

var log = logging.GetLogger()
