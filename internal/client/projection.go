package client

import (
	"sort"
	"strings"
	"time"

	"todonest/internal/model"
)

// MinSearchLen is the query length below which the text filter is inactive.
const MinSearchLen = 2

// PartitionRoots splits the server-ordered roots into open and completed.
// Relative order inside each partition is preserved.
func PartitionRoots(roots []*model.Todo) (open, completed []*model.Todo) {
	open = []*model.Todo{}
	completed = []*model.Todo{}
	for _, todo := range roots {
		if todo.IsCompleted {
			completed = append(completed, todo)
		} else {
			open = append(open, todo)
		}
	}
	return open, completed
}

// PartitionPriority splits open roots into the priority group and the rest,
// each keeping its internal order.
func PartitionPriority(open []*model.Todo) (priority, regular []*model.Todo) {
	priority = []*model.Todo{}
	regular = []*model.Todo{}
	for _, todo := range open {
		if todo.IsPriority {
			priority = append(priority, todo)
		} else {
			regular = append(regular, todo)
		}
	}
	return priority, regular
}

// FilterText keeps roots matching the query in title, description, or tag
// names, looking one level into children. Case-insensitive. Queries shorter
// than MinSearchLen leave the input unfiltered.
func FilterText(roots []*model.Todo, query string) []*model.Todo {
	query = strings.TrimSpace(strings.ToLower(query))
	if len(query) < MinSearchLen {
		return roots
	}

	matched := []*model.Todo{}
	for _, todo := range roots {
		if matchesText(todo, query) {
			matched = append(matched, todo)
			continue
		}
		for _, child := range todo.Children {
			if matchesText(child, query) {
				matched = append(matched, todo)
				break
			}
		}
	}
	return matched
}

func matchesText(todo *model.Todo, query string) bool {
	if strings.Contains(strings.ToLower(todo.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(todo.Description), query) {
		return true
	}
	for _, tag := range todo.Tags {
		if strings.Contains(strings.ToLower(tag.Name), query) {
			return true
		}
	}
	return false
}

// FilterTags keeps roots where the todo or any descendant carries any of the
// selected tag ids. An empty selection leaves the input unfiltered.
func FilterTags(roots []*model.Todo, tagIDs []string) []*model.Todo {
	if len(tagIDs) == 0 {
		return roots
	}

	selected := make(map[string]bool, len(tagIDs))
	for _, id := range tagIDs {
		selected[id] = true
	}

	matched := []*model.Todo{}
	for _, todo := range roots {
		if subtreeHasTag(todo, selected) {
			matched = append(matched, todo)
		}
	}
	return matched
}

func subtreeHasTag(todo *model.Todo, selected map[string]bool) bool {
	for _, tag := range todo.Tags {
		if selected[tag.ID] {
			return true
		}
	}
	for _, child := range todo.Children {
		if subtreeHasTag(child, selected) {
			return true
		}
	}
	return false
}

// DayGroup is one calendar day of completed todos.
type DayGroup struct {
	Day   time.Time
	Todos []*model.Todo
}

// GroupCompletedByDay buckets completed todos by local completion day,
// most recent day first and most recently completed first within a day.
// Todos without a completion time are skipped.
func GroupCompletedByDay(completed []*model.Todo) []DayGroup {
	byDay := map[time.Time][]*model.Todo{}
	for _, todo := range completed {
		if todo.CompletedAt == nil {
			continue
		}
		local := todo.CompletedAt.Local()
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
		byDay[day] = append(byDay[day], todo)
	}

	groups := make([]DayGroup, 0, len(byDay))
	for day, todos := range byDay {
		sort.SliceStable(todos, func(i, j int) bool {
			return todos[i].CompletedAt.After(*todos[j].CompletedAt)
		})
		groups = append(groups, DayGroup{Day: day, Todos: todos})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}
