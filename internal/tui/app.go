package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todonest/internal/client"
	"todonest/internal/model"
)

// Tab is the currently active list tab
type Tab int

const (
	TabOpen Tab = iota
	TabCompleted
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
	modeTagFilter
)

// editSession is the open create/edit form. It is keyed by the todo being
// edited; a create session carries an empty TodoID and an optional parent.
// Only one session exists at a time, and list mutations on other todos are
// unavailable while it is open.
type editSession struct {
	TodoID   string
	ParentID *string
	title    textinput.Model
	desc     textarea.Model
	focus    int // 0 = title, 1 = description
}

// row is one rendered line: either a section header or a todo at a depth
type row struct {
	header string
	todo   *model.Todo
	depth  int
}

type refreshedMsg struct{}

type statusMsg string

type errMsg struct{ err error }

// Model is the bubbletea application model
type Model struct {
	store  *client.Store
	styles *Styles
	keys   KeyMap

	tab    Tab
	mode   mode
	cursor int
	width  int
	height int

	search       textinput.Model
	query        string
	selectedTags map[string]bool
	tagCursor    int

	session      *editSession
	confirmID    string
	confirmTitle string

	status  string
	errText string
}

// NewModel creates the application model over a client store
func NewModel(store *client.Store) *Model {
	search := textinput.New()
	search.Placeholder = "Search todos..."
	search.CharLimit = 100

	return &Model{
		store:        store,
		styles:       NewStyles(TokyoNight),
		keys:         DefaultKeyMap(),
		search:       search,
		selectedTags: map[string]bool{},
	}
}

func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m *Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.store.Refresh(context.Background()); err != nil {
			return errMsg{err}
		}
		return refreshedMsg{}
	}
}

// mutate wraps a store call; the store refetches on success so the command
// only has to report the outcome.
func (m *Model) mutate(status string, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return errMsg{err}
		}
		return statusMsg(status)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshedMsg:
		m.errText = ""
		m.clampCursor()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		m.errText = ""
		m.clampCursor()
		return m, nil

	case errMsg:
		m.errText = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeTagFilter:
			return m.updateTagFilter(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.SwitchTab):
		if m.tab == TabOpen {
			m.tab = TabCompleted
		} else {
			m.tab = TabOpen
		}
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.TagFilter):
		m.mode = modeTagFilter
		m.tagCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.openForm("", nil)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NewChild):
		if todo := m.selected(); todo != nil {
			parentID := todo.ID
			m.openForm("", &parentID)
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if todo := m.selected(); todo != nil {
			m.openForm(todo.ID, todo.ParentID)
			m.session.title.SetValue(todo.Title)
			m.session.desc.SetValue(todo.Description)
			return m, textinput.Blink
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if todo := m.selected(); todo != nil {
			id := todo.ID
			return m, m.mutate("toggled", func(ctx context.Context) error {
				return m.store.ToggleTodo(ctx, id)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Priority):
		if todo := m.selected(); todo != nil && !todo.IsCompleted {
			id, next := todo.ID, !todo.IsPriority
			return m, m.mutate("priority updated", func(ctx context.Context) error {
				return m.store.SetPriority(ctx, id, next)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if todo := m.selected(); todo != nil {
			m.mode = modeConfirmDelete
			m.confirmID = todo.ID
			m.confirmTitle = todo.Title
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearDone):
		if m.tab == TabCompleted {
			if todo := m.selected(); todo != nil && todo.CompletedAt != nil {
				day := *todo.CompletedAt
				return m, m.mutate("cleared day", func(ctx context.Context) error {
					_, err := m.store.DeleteCompletedOn(ctx, day.Local())
					return err
				})
			}
			return m, m.mutate("cleared completed", func(ctx context.Context) error {
				_, err := m.store.DeleteCompleted(ctx)
				return err
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		return m, m.moveSelected(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m, m.moveSelected(1)

	case key.Matches(msg, m.keys.Cancel):
		m.query = ""
		m.search.SetValue("")
		m.selectedTags = map[string]bool{}
		return m, nil
	}

	return m, nil
}

// moveSelected drags the selected open root one slot and submits the full
// new ordering. The server rewrites position = index for every root.
func (m *Model) moveSelected(delta int) tea.Cmd {
	todo := m.selected()
	if todo == nil || todo.IsCompleted || todo.ParentID != nil {
		return nil
	}

	open, _ := client.PartitionRoots(m.store.Todos())
	idx := -1
	ids := make([]string, len(open))
	for i, t := range open {
		ids[i] = t.ID
		if t.ID == todo.ID {
			idx = i
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(ids) {
		return nil
	}
	ids[idx], ids[target] = ids[target], ids[idx]

	return m.mutate("reordered", func(ctx context.Context) error {
		return m.store.ReorderTodos(ctx, ids)
	})
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.clampCursor()
	return m, cmd
}

func (m *Model) openForm(todoID string, parentID *string) {
	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.CharLimit = model.MaxTitleLen
	title.Focus()

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = model.MaxDescriptionLen
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	m.session = &editSession{
		TodoID:   todoID,
		ParentID: parentID,
		title:    title,
		desc:     desc,
	}
	m.mode = modeForm
}

func (m *Model) closeForm() {
	m.session = nil
	m.mode = modeList
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	if s == nil {
		m.mode = modeList
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		s.focus = (s.focus + 1) % 2
		if s.focus == 0 {
			s.title.Focus()
			s.desc.Blur()
		} else {
			s.title.Blur()
			s.desc.Focus()
		}
		return m, nil

	case msg.Type == tea.KeyEnter && s.focus == 0:
		return m, m.submitForm()
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.title, cmd = s.title.Update(msg)
	} else {
		s.desc, cmd = s.desc.Update(msg)
	}
	return m, cmd
}

func (m *Model) submitForm() tea.Cmd {
	s := m.session
	title := strings.TrimSpace(s.title.Value())
	desc := strings.TrimSpace(s.desc.Value())
	if title == "" {
		m.errText = "title is required"
		return nil
	}

	id, parentID := s.TodoID, s.ParentID
	m.closeForm()

	if id == "" {
		return m.mutate("created", func(ctx context.Context) error {
			return m.store.CreateTodo(ctx, title, desc, parentID, nil)
		})
	}
	return m.mutate("saved", func(ctx context.Context) error {
		return m.store.UpdateTodo(ctx, id, &title, &desc, nil)
	})
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm), msg.String() == "y":
		id := m.confirmID
		m.confirmID = ""
		m.mode = modeList
		return m, m.mutate("deleted", func(ctx context.Context) error {
			_, err := m.store.DeleteTodo(ctx, id)
			return err
		})
	case key.Matches(msg, m.keys.Cancel), msg.String() == "n":
		m.confirmID = ""
		m.mode = modeList
		return m, nil
	}
	return m, nil
}

func (m *Model) updateTagFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tags := m.store.Tags()

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.TagFilter):
		m.mode = modeList
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.tagCursor > 0 {
			m.tagCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.tagCursor < len(tags)-1 {
			m.tagCursor++
		}
		return m, nil
	case msg.String() == " ", key.Matches(msg, m.keys.Confirm):
		if m.tagCursor < len(tags) {
			id := tags[m.tagCursor].ID
			if m.selectedTags[id] {
				delete(m.selectedTags, id)
			} else {
				m.selectedTags[id] = true
			}
		}
		return m, nil
	}
	return m, nil
}

// filteredRoots applies the text and tag filters to the server-ordered roots
func (m *Model) filteredRoots() []*model.Todo {
	roots := m.store.Todos()
	roots = client.FilterText(roots, m.query)
	if len(m.selectedTags) > 0 {
		ids := make([]string, 0, len(m.selectedTags))
		for id := range m.selectedTags {
			ids = append(ids, id)
		}
		roots = client.FilterTags(roots, ids)
	}
	return roots
}

// rows flattens the current tab into display lines
func (m *Model) rows() []row {
	open, completed := client.PartitionRoots(m.filteredRoots())

	var out []row
	if m.tab == TabOpen {
		priority, regular := client.PartitionPriority(open)
		if len(priority) > 0 {
			out = append(out, row{header: "Priority"})
			out = appendSubtrees(out, priority)
			if len(regular) > 0 {
				out = append(out, row{header: "Todos"})
			}
		}
		out = appendSubtrees(out, regular)
		return out
	}

	for _, group := range client.GroupCompletedByDay(completed) {
		out = append(out, row{header: group.Day.Format("Monday, Jan 2 2006")})
		out = appendSubtrees(out, group.Todos)
	}
	return out
}

func appendSubtrees(out []row, todos []*model.Todo) []row {
	for _, todo := range todos {
		out = appendSubtree(out, todo, 0)
	}
	return out
}

func appendSubtree(out []row, todo *model.Todo, depth int) []row {
	out = append(out, row{todo: todo, depth: depth})
	for _, child := range todo.Children {
		out = appendSubtree(out, child, depth+1)
	}
	return out
}

func (m *Model) selected() *model.Todo {
	rows := m.rows()
	if m.cursor >= 0 && m.cursor < len(rows) {
		return rows[m.cursor].todo
	}
	return nil
}

func (m *Model) moveCursor(delta int) {
	rows := m.rows()
	next := m.cursor
	for {
		next += delta
		if next < 0 || next >= len(rows) {
			return
		}
		if rows[next].todo != nil {
			m.cursor = next
			return
		}
	}
}

// clampCursor keeps the cursor on a todo line after the row set changes
func (m *Model) clampCursor() {
	rows := m.rows()
	if len(rows) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if rows[m.cursor].todo == nil {
		m.moveCursor(1)
		if rows[m.cursor].todo == nil {
			m.moveCursor(-1)
		}
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("todonest"))
	b.WriteString("  ")
	if m.tab == TabOpen {
		b.WriteString(m.styles.TabActive.Render("Open"))
		b.WriteString(m.styles.TabInactive.Render("Completed"))
	} else {
		b.WriteString(m.styles.TabInactive.Render("Open"))
		b.WriteString(m.styles.TabActive.Render("Completed"))
	}
	b.WriteString("\n")

	if m.mode == modeSearch || m.query != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if len(m.selectedTags) > 0 {
		b.WriteString(m.styles.Help.Render(fmt.Sprintf("filtering by %d tag(s), esc to clear", len(m.selectedTags))))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeForm:
		b.WriteString(m.viewForm())
	case modeConfirmDelete:
		b.WriteString(m.styles.FormBox.Render(fmt.Sprintf(
			"Delete %q and all its subtasks?\n\n%s",
			m.confirmTitle,
			m.styles.Help.Render("enter/y confirm, esc/n cancel"),
		)))
	case modeTagFilter:
		b.WriteString(m.viewTagFilter())
	default:
		b.WriteString(m.viewList())
	}

	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(m.styles.ErrorText.Render(m.errText))
	} else if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(
		"space toggle  n new  a subtask  e edit  d delete  p priority  K/J move  / search  f tags  D clear done  tab switch  q quit"))

	return b.String()
}

func (m *Model) viewList() string {
	rows := m.rows()
	if len(rows) == 0 {
		if m.tab == TabOpen {
			return m.styles.Help.Render("Nothing to do. Press n to add a todo.")
		}
		return m.styles.Help.Render("No completed todos.")
	}

	var b strings.Builder
	for i, r := range rows {
		if r.header != "" {
			if m.tab == TabOpen {
				b.WriteString(m.styles.SectionHeader.Render(r.header))
			} else {
				b.WriteString(m.styles.DayHeader.Render(r.header))
			}
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.renderTodoLine(r, i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTodoLine(r row, selected bool) string {
	todo := r.todo

	check := "[ ]"
	if todo.IsCompleted {
		check = "[x]"
	}
	line := strings.Repeat("  ", r.depth) + check + " " + todo.Title

	if todo.IsPriority && !todo.IsCompleted {
		line = strings.Repeat("  ", r.depth) + check + " " + m.styles.Priority.Render("! ") + todo.Title
	}
	if len(todo.Tags) > 0 {
		names := make([]string, len(todo.Tags))
		for i, tag := range todo.Tags {
			names[i] = "#" + tag.Name
		}
		line += " " + m.styles.Tag.Render(strings.Join(names, " "))
	}

	switch {
	case selected:
		return m.styles.ListSelected.Render(line)
	case todo.IsCompleted:
		return m.styles.ListDone.Render(line)
	case r.depth > 0:
		return m.styles.Child.Render(line)
	default:
		return m.styles.ListItem.Render(line)
	}
}

func (m *Model) viewForm() string {
	s := m.session
	if s == nil {
		return ""
	}

	header := "New todo"
	if s.TodoID != "" {
		header = "Edit todo"
	} else if s.ParentID != nil {
		header = "New subtask"
	}

	return m.styles.FormBox.Render(strings.Join([]string{
		m.styles.FormLabel.Render(header),
		"",
		s.title.View(),
		"",
		s.desc.View(),
		"",
		m.styles.Help.Render("enter save, tab next field, esc cancel"),
	}, "\n"))
}

func (m *Model) viewTagFilter() string {
	tags := m.store.Tags()
	if len(tags) == 0 {
		return m.styles.Help.Render("No tags yet.")
	}

	var b strings.Builder
	b.WriteString(m.styles.FormLabel.Render("Filter by tags"))
	b.WriteString("\n")
	for i, tag := range tags {
		mark := "[ ]"
		if m.selectedTags[tag.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, tag.Name)
		if i == m.tagCursor {
			b.WriteString(m.styles.ListSelected.Render(line))
		} else {
			b.WriteString(m.styles.ListItem.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("space toggle, esc close"))
	return b.String()
}
