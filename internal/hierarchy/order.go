package hierarchy

import (
	"sort"

	"todonest/internal/model"
)

// SortRoots orders root todos for display, in place:
//
//  1. open todos before completed ones
//  2. completed todos by completedAt, most recent first
//  3. open todos with an explicit order before those without, ascending
//  4. open todos without an order by createdAt, newest first
//
// Children are left in the order the assembler attached them.
func SortRoots(roots []*model.Todo) {
	sort.SliceStable(roots, func(i, j int) bool {
		return lessRoot(roots[i], roots[j])
	})
}

func lessRoot(a, b *model.Todo) bool {
	switch {
	case a.IsCompleted && b.IsCompleted:
		return completedAfter(a, b)
	case a.IsCompleted:
		return false
	case b.IsCompleted:
		return true
	default:
		return openBefore(a, b)
	}
}

// completedAfter sorts by completion time descending. A completed todo with
// a missing timestamp sinks to the end.
func completedAfter(a, b *model.Todo) bool {
	switch {
	case a.CompletedAt == nil:
		return false
	case b.CompletedAt == nil:
		return true
	default:
		return a.CompletedAt.After(*b.CompletedAt)
	}
}

func openBefore(a, b *model.Todo) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		return *a.Order < *b.Order
	case a.Order != nil:
		return true
	case b.Order != nil:
		return false
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}
