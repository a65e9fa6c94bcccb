// Copyright 2021 The netreq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netreq

import (
	"container/heap"

	"github.com/gogama/netreq/request"
)

// queueItem is a request waiting in a requestQueue. seq records arrival
// order so that equal priorities are dequeued first-in first-out.
type queueItem struct {
	r   request.Request
	seq uint64
}

// requestHeap implements heap.Interface. The highest priority is at the
// root.
type requestHeap []queueItem

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	pi, pj := h[i].r.Priority(), h[j].r.Priority()
	if pi != pj {
		return pi > pj
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	*h = append(*h, x.(queueItem))
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queueItem{}
	*h = old[:n-1]
	return item
}

// requestQueue is a priority queue of requests. It is not safe for
// concurrent use; Manager guards it with its own lock.
type requestQueue struct {
	h   requestHeap
	seq uint64
}

func (q *requestQueue) push(r request.Request) {
	q.seq++
	heap.Push(&q.h, queueItem{r: r, seq: q.seq})
}

// pop removes and returns the request with the highest priority, or nil
// if the queue is empty.
func (q *requestQueue) pop() request.Request {
	if len(q.h) == 0 {
		return nil
	}
	return heap.Pop(&q.h).(queueItem).r
}

func (q *requestQueue) len() int {
	return len(q.h)
}
