// Package hierarchy rebuilds the nested todo tree from the flat set of a
// user's records and produces the canonical display order for root todos.
package hierarchy

import (
	"errors"

	"todonest/internal/model"
)

// ErrCycle is returned when parent references loop back on themselves. A
// malformed chain is reported instead of silently vanishing from the tree.
var ErrCycle = errors.New("hierarchy: cycle detected in parent references")

// Assemble turns the complete, unordered collection of one user's todos into
// the list of root todos with Children resolved recursively. Records whose
// parent id does not resolve are dropped from the output (together with
// their descendants) rather than failing the whole tree; records caught in a
// parent cycle fail closed with ErrCycle. The input slice is not modified;
// nodes in the result are fresh copies.
func Assemble(todos []model.Todo) ([]*model.Todo, error) {
	byID := make(map[string]*model.Todo, len(todos))
	for i := range todos {
		t := todos[i]
		t.Children = nil
		byID[t.ID] = &t
	}

	// Group children under their parent, keeping input order (callers load
	// children in creation order). Nodes with a dangling parent reference
	// become subtree heads that are walked but excluded from the output.
	childrenOf := make(map[string][]*model.Todo)
	var roots, dangling []*model.Todo
	for i := range todos {
		node := byID[todos[i].ID]
		switch {
		case node.ParentID == nil:
			roots = append(roots, node)
		default:
			parent, ok := byID[*node.ParentID]
			if !ok {
				dangling = append(dangling, node)
				continue
			}
			childrenOf[parent.ID] = append(childrenOf[parent.ID], node)
		}
	}

	visited := make(map[string]bool, len(todos))
	for _, root := range roots {
		attach(root, childrenOf, visited)
	}
	for _, head := range dangling {
		attach(head, childrenOf, visited)
	}

	// Every record reachable from a root or a dangling head has been
	// visited. Anything left sits on a parent loop.
	if len(visited) != len(byID) {
		return nil, ErrCycle
	}

	if roots == nil {
		roots = []*model.Todo{}
	}
	return roots, nil
}

// attach recursively resolves Children. Each node has exactly one parent, so
// the walk cannot revisit a node; visited only records coverage for the
// cycle check above.
func attach(node *model.Todo, childrenOf map[string][]*model.Todo, visited map[string]bool) {
	visited[node.ID] = true

	children := childrenOf[node.ID]
	node.Children = make([]*model.Todo, 0, len(children))
	for _, child := range children {
		attach(child, childrenOf, visited)
		node.Children = append(node.Children, child)
	}
}
