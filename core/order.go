package core

import (
	"cmp"
	"container/heap"
	"slices"
)

// CompareInstructionID orders instructions by ascending instruction id.
func CompareInstructionID(a, b Instruction) int {
	return cmp.Compare(a.ID, b.ID)
}

// SortInstructions sorts in place by instruction id.
func SortInstructions(instructions []Instruction) {
	slices.SortFunc(instructions, CompareInstructionID)
}

// InstructionQueue pops instructions in ascending id order.
type InstructionQueue struct {
	items instructionHeap
}

func NewInstructionQueue(instructions ...Instruction) *InstructionQueue {
	q := &InstructionQueue{items: append(instructionHeap(nil), instructions...)}
	heap.Init(&q.items)
	return q
}

func (q *InstructionQueue) Push(in Instruction) {
	heap.Push(&q.items, in)
}

// Pop removes the instruction with the lowest id. ok is false on an empty queue.
func (q *InstructionQueue) Pop() (Instruction, bool) {
	if len(q.items) == 0 {
		return Instruction{}, false
	}
	return heap.Pop(&q.items).(Instruction), true
}

func (q *InstructionQueue) Len() int { return len(q.items) }

type instructionHeap []Instruction

func (h instructionHeap) Len() int           { return len(h) }
func (h instructionHeap) Less(i, j int) bool { return CompareInstructionID(h[i], h[j]) < 0 }
func (h instructionHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *instructionHeap) Push(x any) { *h = append(*h, x.(Instruction)) }

func (h *instructionHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
