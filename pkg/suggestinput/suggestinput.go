// Package suggestinput provides a Bubble Tea text input with a dropdown of
// matching suggestions.
//
// The parent owns the value. Edits and accepted suggestions are applied to the
// input during Update, so the parent reads Value right after forwarding a
// message and overrides it with SetValue when it wants something else shown.
// Each change is also announced as a ChangeMsg for parents that only listen.
// The widget owns the dropdown: whether it is open and which row is
// highlighted.
package suggestinput

import (
	"slices"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultMaxItems is the number of suggestions shown when no limit is set.
	DefaultMaxItems = 30

	// DefaultMaxHeight is the number of dropdown rows shown before the list
	// scrolls.
	DefaultMaxHeight = 8

	defaultWidth = 40
)

// ChangeMsg announces that the input identified by ID now holds Value. It is
// delivered asynchronously, so by the time it arrives the input may have moved
// on; Value is what the input held when the change happened.
type ChangeMsg struct {
	ID    string
	Value string
}

// refocusMsg gives keyboard focus back to the text row after a suggestion was
// accepted. It is delivered as a command so it lands on the next frame, and is
// dropped if the input was blurred in between.
type refocusMsg struct {
	id    string
	blurs int
}

// KeyMap is the set of keys the dropdown reacts to. Everything else is handed
// to the underlying text input.
type KeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Accept  key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap is the default set of key bindings for the dropdown.
var DefaultKeyMap = KeyMap{
	Next:    key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next suggestion")),
	Prev:    key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous suggestion")),
	Accept:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept")),
	Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}

// Styles for the dropdown rows.
type Styles struct {
	Row       lipgloss.Style
	ActiveRow lipgloss.Style
	Disabled  lipgloss.Style
}

// DefaultStyles returns the styles used by New.
func DefaultStyles() Styles {
	return Styles{
		Row:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ActiveRow: lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Disabled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Model is the Bubble Tea model for a suggestion input.
type Model struct {
	// ID is copied into every ChangeMsg so a form with several inputs can tell
	// them apart.
	ID string

	KeyMap KeyMap
	Styles Styles

	input       textinput.Model
	suggestions []string
	filtered    []string

	// active is the highlighted row in filtered, or -1.
	active int
	open   bool

	// blurs counts Blur calls so a pending refocus can tell that focus has
	// moved elsewhere since the commit that asked for it.
	blurs int

	disabled  bool
	maxItems  int
	maxHeight int

	// Screen position of the text row, set by the parent's layout. Pointer
	// events are hit-tested against it.
	originX int
	originY int
}

// New creates a suggestion input with default settings.
func New(id string) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Width = defaultWidth
	input.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ID:        id,
		KeyMap:    DefaultKeyMap,
		Styles:    DefaultStyles(),
		input:     input,
		active:    -1,
		maxItems:  DefaultMaxItems,
		maxHeight: DefaultMaxHeight,
	}
}

// SetValue replaces the displayed value. The parent calls it whenever its copy
// of the value changes, including while the dropdown is open.
func (m *Model) SetValue(v string) {
	if v != m.input.Value() {
		m.input.SetValue(v)
		m.input.CursorEnd()
	}
	m.refilter()
}

// Value returns the displayed value.
func (m Model) Value() string {
	return m.input.Value()
}

// SetSuggestions replaces the candidate list. The slice is read but never
// modified.
func (m *Model) SetSuggestions(suggestions []string) {
	m.suggestions = suggestions
	m.refilter()
}

// SetMaxItems caps the number of suggestions shown. Values of zero or less
// restore DefaultMaxItems.
func (m *Model) SetMaxItems(n int) {
	if n <= 0 {
		n = DefaultMaxItems
	}
	m.maxItems = n
	m.refilter()
}

// SetMaxHeight caps the number of visible dropdown rows. Values of zero or less
// restore DefaultMaxHeight.
func (m *Model) SetMaxHeight(n int) {
	if n <= 0 {
		n = DefaultMaxHeight
	}
	m.maxHeight = n
}

// SetWidth sets the width of the text row, excluding the prompt.
func (m *Model) SetWidth(w int) {
	if w <= 0 {
		w = defaultWidth
	}
	m.input.Width = w
}

func (m *Model) SetPrompt(prompt string) {
	m.input.Prompt = prompt
}

func (m *Model) SetPlaceholder(placeholder string) {
	m.input.Placeholder = placeholder
}

// SetDisabled turns all interaction off. A disabled input is always closed.
func (m *Model) SetDisabled(disabled bool) {
	m.disabled = disabled
	if disabled {
		m.input.Blur()
		m.close()
	}
}

func (m Model) Disabled() bool {
	return m.disabled
}

// SetOrigin tells the input where its text row was drawn.
func (m *Model) SetOrigin(x, y int) {
	m.originX = x
	m.originY = y
}

// Focus gives the input keyboard focus and opens the dropdown.
func (m *Model) Focus() tea.Cmd {
	if m.disabled {
		return nil
	}
	m.open = true
	return m.input.Focus()
}

// Blur removes keyboard focus and closes the dropdown.
func (m *Model) Blur() {
	m.blurs++
	m.input.Blur()
	m.close()
}

func (m Model) Focused() bool {
	return m.input.Focused()
}

// Open reports whether the dropdown is visible. It never is while there is
// nothing to show.
func (m Model) Open() bool {
	return m.open && !m.disabled && len(m.filtered) > 0
}

// ActiveIndex returns the highlighted row, or -1 when nothing is highlighted.
func (m Model) ActiveIndex() int {
	return m.active
}

// Filtered returns the suggestions currently offered.
func (m Model) Filtered() []string {
	return m.filtered
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key and mouse messages. Mouse messages are expected for every
// pointer event on screen, not only the ones inside the input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.disabled {
		return m, nil
	}

	switch msg := msg.(type) {
	case refocusMsg:
		if msg.id != m.ID || msg.blurs != m.blurs {
			return m, nil
		}
		return m, m.input.Focus()

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.input.Focused() {
			return m, nil
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.KeyMap.Next):
		if !m.Open() {
			m.open = true
			return m, nil
		}
		m.active = (m.active + 1) % len(m.filtered)
		return m, nil

	case key.Matches(msg, m.KeyMap.Prev):
		if !m.Open() {
			m.open = true
			return m, nil
		}
		if m.active <= 0 {
			m.active = len(m.filtered) - 1
		} else {
			m.active--
		}
		return m, nil

	case key.Matches(msg, m.KeyMap.Accept):
		if m.Open() && m.active >= 0 {
			return m.commit(m.filtered[m.active])
		}
		return m, nil

	case key.Matches(msg, m.KeyMap.Dismiss):
		m.close()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	after := m.input.Value()
	if after == before {
		return m, cmd
	}

	m.open = true
	m.active = -1
	m.refilter()
	return m, tea.Batch(cmd, changed(m.ID, after))
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	row, hit := m.hitTest(msg.X, msg.Y)
	switch {
	case !hit:
		m.close()
		return m, nil
	case row < 0:
		if m.input.Focused() {
			m.open = true
		}
		return m, nil
	default:
		return m.commit(m.filtered[row])
	}
}

// commit accepts a suggestion: the parent is told about the literal text, the
// dropdown closes and focus returns to the text row on the next frame.
func (m Model) commit(suggestion string) (Model, tea.Cmd) {
	m.input.SetValue(suggestion)
	m.input.CursorEnd()
	m.close()
	m.refilter()

	refocus := refocusMsg{id: m.ID, blurs: m.blurs}
	return m, tea.Batch(changed(m.ID, suggestion), func() tea.Msg {
		return refocus
	})
}

func (m *Model) close() {
	m.open = false
	m.active = -1
}

func (m *Model) refilter() {
	filtered := Filter(m.suggestions, m.input.Value(), m.maxItems)
	if !slices.Equal(filtered, m.filtered) {
		m.active = -1
	}
	m.filtered = filtered
}

func changed(id, value string) tea.Cmd {
	return func() tea.Msg {
		return ChangeMsg{ID: id, Value: value}
	}
}
