package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todonest/internal/model"
)

func openTodo(id, title string) *model.Todo {
	return &model.Todo{ID: id, Title: title}
}

func completedTodo(id, title string, at time.Time) *model.Todo {
	return &model.Todo{ID: id, Title: title, IsCompleted: true, CompletedAt: &at}
}

func ids(todos []*model.Todo) []string {
	out := make([]string, len(todos))
	for i, todo := range todos {
		out[i] = todo.ID
	}
	return out
}

func TestPartitionRoots(t *testing.T) {
	now := time.Now()
	roots := []*model.Todo{
		openTodo("a", "a"),
		completedTodo("b", "b", now),
		openTodo("c", "c"),
	}

	open, completed := PartitionRoots(roots)
	assert.Equal(t, []string{"a", "c"}, ids(open))
	assert.Equal(t, []string{"b"}, ids(completed))
}

func TestPartitionPriority(t *testing.T) {
	regular1 := openTodo("r1", "r1")
	flagged := openTodo("p1", "p1")
	flagged.IsPriority = true
	regular2 := openTodo("r2", "r2")

	priority, regular := PartitionPriority([]*model.Todo{regular1, flagged, regular2})
	assert.Equal(t, []string{"p1"}, ids(priority))
	assert.Equal(t, []string{"r1", "r2"}, ids(regular))
}

func TestFilterTextShortQueryInactive(t *testing.T) {
	roots := []*model.Todo{openTodo("a", "alpha"), openTodo("b", "beta")}

	assert.Len(t, FilterText(roots, ""), 2)
	assert.Len(t, FilterText(roots, "x"), 2)
	assert.Len(t, FilterText(roots, " a "), 2)
}

func TestFilterTextMatchesFields(t *testing.T) {
	byTitle := openTodo("t", "Buy groceries")
	byDescription := openTodo("d", "errand")
	byDescription.Description = "pick up the dry cleaning"
	byTag := openTodo("g", "chore")
	byTag.Tags = []model.Tag{{ID: "tag1", Name: "groceries"}}
	miss := openTodo("m", "unrelated")

	roots := []*model.Todo{byTitle, byDescription, byTag, miss}

	assert.Equal(t, []string{"t", "g"}, ids(FilterText(roots, "grocer")))
	assert.Equal(t, []string{"d"}, ids(FilterText(roots, "DRY CLEAN")))
	assert.Empty(t, ids(FilterText(roots, "nothing here")))
}

func TestFilterTextLooksOneChildLevelDeep(t *testing.T) {
	child := openTodo("c", "inner needle")
	grandchild := openTodo("gc", "buried needle")
	child.Children = []*model.Todo{grandchild}

	parent := openTodo("p", "outer")
	parent.Children = []*model.Todo{child}

	// Child matches surface the parent.
	assert.Equal(t, []string{"p"}, ids(FilterText([]*model.Todo{parent}, "inner")))

	// Grandchildren are beyond the one-level lookahead.
	assert.Empty(t, ids(FilterText([]*model.Todo{parent}, "buried")))
}

func TestFilterTags(t *testing.T) {
	tagged := openTodo("a", "a")
	tagged.Tags = []model.Tag{{ID: "work"}}

	childTagged := openTodo("b", "b")
	inner := openTodo("b1", "b1")
	inner.Tags = []model.Tag{{ID: "work"}}
	childTagged.Children = []*model.Todo{inner}

	plain := openTodo("c", "c")

	roots := []*model.Todo{tagged, childTagged, plain}

	assert.Equal(t, []string{"a", "b"}, ids(FilterTags(roots, []string{"work"})))
	assert.Len(t, FilterTags(roots, nil), 3)
	assert.Empty(t, FilterTags(roots, []string{"home"}))
}

func TestGroupCompletedByDay(t *testing.T) {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.Local)

	older := completedTodo("old", "old", base.AddDate(0, 0, -1))
	morning := completedTodo("am", "am", base.Add(-3*time.Hour))
	evening := completedTodo("pm", "pm", base.Add(3*time.Hour))
	dangling := openTodo("x", "no completion time")

	groups := GroupCompletedByDay([]*model.Todo{older, morning, evening, dangling})
	require.Len(t, groups, 2)

	// Most recent day first, most recently completed first within it.
	assert.Equal(t, []string{"pm", "am"}, ids(groups[0].Todos))
	assert.Equal(t, []string{"old"}, ids(groups[1].Todos))
	assert.True(t, groups[0].Day.After(groups[1].Day))
}
