package refcache

import "container/heap"

// refQueue orders discovered references by target URI, then by discovery
// order, so passes rewrite and report references reproducibly.
type refQueue []*site

func (q refQueue) Len() int { return len(q) }

func (q refQueue) Less(i, j int) bool {
	if q[i].target != q[j].target {
		return q[i].target < q[j].target
	}
	return q[i].seq < q[j].seq
}

func (q refQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *refQueue) Push(x any) { *q = append(*q, x.(*site)) }

func (q *refQueue) Pop() any {
	old := *q
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return s
}

var _ heap.Interface = (*refQueue)(nil)
