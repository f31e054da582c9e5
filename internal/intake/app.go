package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/clinicdesk/internal/catalog"
	"github.com/atinylittleshell/clinicdesk/internal/registry"
	"github.com/atinylittleshell/clinicdesk/pkg/suggestinput"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/ansi"
	"go.uber.org/zap"
)

const (
	title = "New patient intake"

	// Lines above the first field: title and its underline.
	headerHeight = 2

	minInputWidth = 20
	maxInputWidth = 60
)

type Options struct {
	MaxItems    int
	MaxHeight   int
	RecentLimit int
}

func NewOptions() Options {
	return Options{
		MaxItems:    suggestinput.DefaultMaxItems,
		MaxHeight:   suggestinput.DefaultMaxHeight,
		RecentLimit: 200,
	}
}

var formFields = []struct {
	kind        registry.Field
	label       string
	placeholder string
}{
	{registry.FieldFullName, "Patient", "full name"},
	{registry.FieldPractitioner, "Practitioner", "who is seeing the patient"},
	{registry.FieldDiagnosis, "Diagnosis", "primary diagnosis"},
	{registry.FieldMedication, "Medication", "current prescription"},
}

type formField struct {
	kind  registry.Field
	label string
	input suggestinput.Model

	// value is the form's copy of what the input shows. It is read back from
	// the input after every message the input handles, and pushed into it with
	// SetValue when the form resets.
	value       string
	suggestions []string
}

type savedMsg struct {
	patient *registry.Patient
}

type saveErrMsg struct {
	err error
}

type appModel struct {
	registry *registry.Registry
	logger   *zap.Logger
	options  Options

	fields  []formField
	focused int

	keys keyMap
	help help.Model

	status    string
	statusErr bool
	saved     int
	width     int

	titleStyle        lipgloss.Style
	labelStyle        lipgloss.Style
	focusedLabelStyle lipgloss.Style
	statusStyle       lipgloss.Style
	errorStyle        lipgloss.Style
}

func initialModel(
	reg *registry.Registry,
	cat catalog.Catalog,
	logger *zap.Logger,
	options Options,
) (appModel, error) {
	m := appModel{
		registry: reg,
		logger:   logger,
		options:  options,
		keys:     defaultKeyMap,
		help:     help.New(),

		titleStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		labelStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		focusedLabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true),
		statusStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		errorStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}

	for _, def := range formFields {
		recent, err := reg.DistinctValues(def.kind, options.RecentLimit)
		if err != nil {
			return appModel{}, fmt.Errorf("load recent %s values: %w", def.kind, err)
		}

		input := suggestinput.New(def.kind.String())
		input.SetPlaceholder(def.placeholder)
		input.SetMaxItems(options.MaxItems)
		input.SetMaxHeight(options.MaxHeight)

		field := formField{
			kind:        def.kind,
			label:       def.label,
			input:       input,
			suggestions: catalog.Merge(recent, cat.For(def.kind)),
		}
		field.input.SetSuggestions(field.suggestions)
		m.fields = append(m.fields, field)

		logger.Debug("intake field ready",
			zap.Stringer("field", def.kind),
			zap.Int("recent", len(recent)),
			zap.Int("suggestions", len(field.suggestions)),
		)
	}

	m.fields[0].input.Focus()
	m.layout()
	return m, nil
}

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		width := min(max(msg.Width-4, minInputWidth), maxInputWidth)
		for i := range m.fields {
			m.fields[i].input.SetWidth(width)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextField):
			cmd = m.focus((m.focused + 1) % len(m.fields))
		case key.Matches(msg, m.keys.PrevField):
			cmd = m.focus((m.focused - 1 + len(m.fields)) % len(m.fields))
		case key.Matches(msg, m.keys.Save):
			cmd = m.save()
		default:
			cmd = m.updateField(m.focused, msg)
		}

	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	case suggestinput.ChangeMsg:
		// Values are already recorded by updateField; this one may be stale.
		m.logger.Debug("intake field changed", zap.String("id", msg.ID))

	case savedMsg:
		cmd = m.handleSaved(msg.patient)

	case saveErrMsg:
		m.logger.Warn("failed to save patient", zap.Error(msg.err))
		m.setStatus(saveErrorText(msg.err), true)

	default:
		cmd = m.broadcast(msg)
	}

	m.layout()
	return m, cmd
}

// handleMouse moves focus to the field under a left press, then lets every
// input see the event so the others can close their dropdowns.
func (m *appModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	var cmds []tea.Cmd

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		for i := range m.fields {
			if i != m.focused && m.fields[i].input.Contains(msg.X, msg.Y) {
				cmds = append(cmds, m.focus(i))
				break
			}
		}
	}

	cmds = append(cmds, m.broadcast(msg))
	return tea.Batch(cmds...)
}

func (m *appModel) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.fields))
	for i := range m.fields {
		cmds[i] = m.updateField(i, msg)
	}
	return tea.Batch(cmds...)
}

// updateField hands msg to one input and records whatever value it ends up
// holding, in the same Update as the keystroke or click that caused it.
func (m *appModel) updateField(i int, msg tea.Msg) tea.Cmd {
	f := &m.fields[i]

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)

	if v := f.input.Value(); v != f.value {
		f.value = v
		m.setStatus("", false)
	}
	return cmd
}

func (m *appModel) focus(i int) tea.Cmd {
	m.fields[m.focused].input.Blur()
	m.focused = i
	return m.fields[i].input.Focus()
}

func (m appModel) valueOf(kind registry.Field) string {
	for _, f := range m.fields {
		if f.kind == kind {
			return f.value
		}
	}
	return ""
}

func (m appModel) save() tea.Cmd {
	patient := registry.Patient{
		FullName:     m.valueOf(registry.FieldFullName),
		Practitioner: m.valueOf(registry.FieldPractitioner),
		Diagnosis:    m.valueOf(registry.FieldDiagnosis),
		Medication:   m.valueOf(registry.FieldMedication),
	}
	reg := m.registry

	return func() tea.Msg {
		saved, err := reg.AddPatient(patient)
		if err != nil {
			return saveErrMsg{err: err}
		}
		return savedMsg{patient: saved}
	}
}

// handleSaved clears the form and offers the values just entered first the
// next time round.
func (m *appModel) handleSaved(patient *registry.Patient) tea.Cmd {
	m.saved++
	m.logger.Info("patient saved",
		zap.String("publicId", patient.PublicID),
		zap.Int("sessionTotal", m.saved),
	)

	for i := range m.fields {
		f := &m.fields[i]
		if v := strings.TrimSpace(f.value); v != "" {
			f.suggestions = catalog.Merge([]string{v}, f.suggestions)
			f.input.SetSuggestions(f.suggestions)
		}
		f.value = ""
		f.input.SetValue("")
	}

	m.setStatus(fmt.Sprintf("Saved %s (%s)", patient.FullName, shortID(patient.PublicID)), false)
	return m.focus(0)
}

func (m *appModel) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
}

// layout records where each input is drawn. It must mirror View.
func (m *appModel) layout() {
	y := headerHeight
	for i := range m.fields {
		m.fields[i].input.SetOrigin(0, y+1)
		y += 1 + m.fields[i].input.Height() + 1
	}
}

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", ansi.PrintableRuneWidth(title)))
	b.WriteString("\n")

	for i, f := range m.fields {
		label := m.labelStyle
		if i == m.focused {
			label = m.focusedLabelStyle
		}
		b.WriteString(label.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n\n")
	}

	if m.status != "" {
		style := m.statusStyle
		if m.statusErr {
			style = m.errorStyle
		}
		b.WriteString(style.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func saveErrorText(err error) string {
	if errors.Is(err, registry.ErrNameRequired) {
		return "Patient name is required"
	}
	return "Could not save patient: " + err.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run shows the intake form until the user quits and returns how many patients
// were saved.
func Run(
	ctx context.Context,
	reg *registry.Registry,
	cat catalog.Catalog,
	logger *zap.Logger,
	options Options,
) (int, error) {
	m, err := initialModel(reg, cat, logger, options)
	if err != nil {
		return 0, err
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return 0, err
	}

	result, ok := final.(appModel)
	if !ok {
		logger.Error("intake resulted in an unexpected app model")
		panic("intake resulted in an unexpected app model")
	}

	return result.saved, nil
}
