package hnsw

import (
	"container/heap"

	"github.com/sanonone/kektorindex/pkg/core/types"
)

// maxHeap keeps the most similar candidate on top. It is the search
// frontier: the next node to expand is always the most promising one.
type maxHeap []types.Candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[i].Score > h[j].Score }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(types.Candidate)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (h *maxHeap) push(c types.Candidate) { heap.Push(h, c) }
func (h *maxHeap) pop() types.Candidate  { return heap.Pop(h).(types.Candidate) }

// minHeap keeps the least similar retained result on top, so the worst of
// the current best ef can be compared and evicted in O(log ef).
type minHeap []types.Candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(types.Candidate)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func (h *minHeap) push(c types.Candidate) { heap.Push(h, c) }
func (h *minHeap) pop() types.Candidate  { return heap.Pop(h).(types.Candidate) }

// peek returns the worst retained result. The heap must not be empty.
func (h minHeap) peek() types.Candidate { return h[0] }
