// Package tui is the terminal editing surface: one open page at a time,
// pulled into a textarea, pushed back with ctrl+s.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/moamenhredeen/el-confluence/internal/config"
	"github.com/moamenhredeen/el-confluence/internal/drafts"
	"github.com/moamenhredeen/el-confluence/internal/format"
	"github.com/moamenhredeen/el-confluence/internal/resolve"
	"github.com/moamenhredeen/el-confluence/internal/session"
	"github.com/moamenhredeen/el-confluence/internal/validate"
)

// autosaveEvery is how often dirty content is snapshotted to the drafts store.
const autosaveEvery = 30 * time.Second

// ViewMode represents the current view.
type ViewMode int

const (
	ViewPrompt  ViewMode = iota // URL/ID entry
	ViewEditor                  // main editor
	ViewTitle                   // title entry overlay
	ViewConfirm                 // discard-unsaved confirmation
	ViewHelp                    // help overlay
)

// Messages
type pageOpenedMsg struct {
	sess *session.Session
	err  error
}

type pushedMsg struct {
	version int
	err     error
}

type formattedMsg struct {
	text string
	err  error
}

type validatedMsg struct {
	diagnostics string
	err         error
}

type draftSavedMsg struct {
	err error
}

type autosaveTickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	width  int
	height int
	ready  bool

	viewMode ViewMode

	cfg       *config.Config
	manager   *session.Manager
	formatter format.Formatter
	validator validate.Validator
	drafts    *drafts.Store // nil disables autosave

	active *session.Session

	urlInput   textinput.Model
	titleInput textinput.Model
	editor     textarea.Model

	// editorFocused selects between typing into the textarea and command
	// mode, where single-letter bindings apply.
	editorFocused bool

	// pendingOpenID is the page waiting on the discard confirmation.
	pendingOpenID string

	busy        string // "pulling" or "pushing" while an exchange is in flight
	status      string
	statusIsErr bool
	diagnostics string

	keys KeyMap
}

// NewRootModel creates the root model. initialID, when non-empty, is opened
// on startup.
func NewRootModel(
	cfg *config.Config,
	manager *session.Manager,
	formatter format.Formatter,
	validator validate.Validator,
	draftStore *drafts.Store,
	initialID string,
) Model {
	url := textinput.New()
	url.Placeholder = "page URL or ID"
	url.Prompt = "❯ "
	url.PromptStyle = PromptTitleStyle
	url.CharLimit = 0
	url.Width = 60
	url.Focus()

	title := textinput.New()
	title.Prompt = "Title: "
	title.PromptStyle = PromptTitleStyle
	title.CharLimit = 0
	title.Width = 60

	ed := textarea.New()
	ed.CharLimit = 0
	ed.ShowLineNumbers = true

	return Model{
		viewMode:      ViewPrompt,
		cfg:           cfg,
		manager:       manager,
		formatter:     formatter,
		validator:     validator,
		drafts:        draftStore,
		urlInput:      url,
		titleInput:    title,
		editor:        ed,
		pendingOpenID: initialID,
		keys:          DefaultKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		autosaveTickCmd(),
	}
	if m.pendingOpenID != "" {
		id := m.pendingOpenID
		cmds = append(cmds, m.openPageCmd(id))
	}
	return tea.Batch(cmds...)
}

// openPageCmd pulls a page through the session manager.
func (m Model) openPageCmd(id string) tea.Cmd {
	manager := m.manager
	return func() tea.Msg {
		sess, err := manager.Open(context.Background(), id)
		return pageOpenedMsg{sess: sess, err: err}
	}
}

// pushCmd pushes the active session.
func pushCmd(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		version, err := sess.Push(context.Background())
		return pushedMsg{version: version, err: err}
	}
}

// formatCmd pretty-prints text through the external formatter.
func (m Model) formatCmd(text string) tea.Cmd {
	formatter := m.formatter
	return func() tea.Msg {
		out, err := formatter.Format(context.Background(), text)
		return formattedMsg{text: out, err: err}
	}
}

// validateCmd validates text against the configured schema.
func (m Model) validateCmd(text string) tea.Cmd {
	validator := m.validator
	schema := m.cfg.SchemaPath
	return func() tea.Msg {
		diag, err := validator.Validate(context.Background(), text, schema)
		return validatedMsg{diagnostics: diag, err: err}
	}
}

// saveDraftCmd snapshots the session to the drafts store.
func (m Model) saveDraftCmd() tea.Cmd {
	store := m.drafts
	sess := m.active
	return func() tea.Msg {
		_, err := store.Save(sess.ID(), sess.Title(), sess.SpaceKey(), sess.Version(), sess.Content())
		return draftSavedMsg{err: err}
	}
}

func autosaveTickCmd() tea.Cmd {
	return tea.Tick(autosaveEvery, func(t time.Time) tea.Msg {
		return autosaveTickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.editor.SetWidth(m.width - 4)
		m.editor.SetHeight(m.editorHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageOpenedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("pull failed: %v", msg.err))
			m.busy = ""
			return m, nil
		}
		m.active = msg.sess
		m.busy = ""
		m.diagnostics = ""
		m.editor.SetValue(msg.sess.Content())
		m.titleInput.SetValue(msg.sess.Title())
		m.viewMode = ViewEditor
		m.focusEditor()
		m.setStatus(fmt.Sprintf("Opened %q (%s/%s), next write is version %d",
			msg.sess.Title(), msg.sess.SpaceKey(), msg.sess.ID(), msg.sess.Version()))
		return m, nil

	case pushedMsg:
		m.busy = ""
		if msg.err != nil {
			var pushErr *session.PushError
			if errors.As(msg.err, &pushErr) && pushErr.IsConflict() {
				m.setError(fmt.Sprintf("push rejected, page changed on the server: %s — re-pull (r) and reapply", pushErr.Message))
			} else {
				m.setError(fmt.Sprintf("push failed: %v", msg.err))
			}
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Pushed as version %d", msg.version))
		if m.drafts != nil && m.active != nil {
			_ = m.drafts.Purge(m.active.ID())
		}
		return m, nil

	case formattedMsg:
		if msg.err != nil {
			// Presentation only: keep the buffer as-is.
			m.setError(fmt.Sprintf("formatter unavailable: %v", msg.err))
			return m, nil
		}
		m.editor.SetValue(msg.text)
		if m.active != nil {
			_ = m.active.SetContent(msg.text)
		}
		m.setStatus("Formatted")
		return m, nil

	case validatedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("validator unavailable: %v", msg.err))
			return m, nil
		}
		if msg.diagnostics == "" {
			m.diagnostics = ""
			m.setStatus("Document is valid")
		} else {
			m.diagnostics = msg.diagnostics
			m.setStatus("Validation reported problems")
		}
		return m, nil

	case draftSavedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("draft save failed: %v", msg.err))
		} else {
			m.setStatus("Draft saved")
		}
		return m, nil

	case autosaveTickMsg:
		cmds := []tea.Cmd{autosaveTickCmd()}
		if m.drafts != nil && m.active != nil && m.active.State() == session.StateBound && m.active.Dirty() {
			cmds = append(cmds, m.saveDraftCmd())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewPrompt:
		return m.handlePromptKey(msg)
	case ViewEditor:
		return m.handleEditorKey(msg)
	case ViewTitle:
		return m.handleTitleKey(msg)
	case ViewConfirm:
		return m.handleConfirmKey(msg)
	case ViewHelp:
		m.viewMode = ViewEditor
		if m.active == nil {
			m.viewMode = ViewPrompt
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		if m.active != nil {
			m.viewMode = ViewEditor
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		raw := strings.TrimSpace(m.urlInput.Value())
		if raw == "" {
			return m, nil
		}
		id := raw
		if strings.Contains(raw, "/") {
			resolved, err := resolve.FromURL(raw)
			if err != nil {
				m.setError(err.Error())
				return m, nil
			}
			id = resolved
		} else {
			id = resolve.FromID(raw)
		}

		if m.manager.HasUnsavedSession(id) {
			m.pendingOpenID = id
			m.viewMode = ViewConfirm
			return m, nil
		}
		return m.startOpen(id)
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Open):
		m.urlInput.SetValue("")
		m.urlInput.Focus()
		m.viewMode = ViewPrompt
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Push):
		return m.startPush()
	}

	if m.editorFocused {
		if key.Matches(msg, m.keys.Escape) {
			m.editorFocused = false
			m.editor.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		if m.active != nil {
			_ = m.active.SetContent(m.editor.Value())
		}
		return m, cmd
	}

	// Command mode
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.focusEditor()
		return m, nil

	case key.Matches(msg, m.keys.Title):
		if m.active == nil {
			return m, nil
		}
		m.titleInput.SetValue(m.active.Title())
		m.titleInput.Focus()
		m.viewMode = ViewTitle
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Format):
		return m, m.formatCmd(m.editor.Value())

	case key.Matches(msg, m.keys.Validate):
		return m, m.validateCmd(m.editor.Value())

	case key.Matches(msg, m.keys.Draft):
		if m.drafts == nil {
			m.setError("drafts store not available")
			return m, nil
		}
		return m, m.saveDraftCmd()

	case key.Matches(msg, m.keys.Repull):
		if m.active == nil {
			return m, nil
		}
		id := m.active.ID()
		if m.manager.HasUnsavedSession(id) {
			m.pendingOpenID = id
			m.viewMode = ViewConfirm
			return m, nil
		}
		return m.startOpen(id)

	case key.Matches(msg, m.keys.Help):
		m.viewMode = ViewHelp
		return m, nil
	}

	return m, nil
}

func (m Model) handleTitleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.viewMode = ViewEditor
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if err := m.active.SetTitle(strings.TrimSpace(m.titleInput.Value())); err != nil {
			m.setError(err.Error())
		} else {
			m.setStatus("Title updated")
		}
		m.viewMode = ViewEditor
		return m, nil
	}

	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		id := m.pendingOpenID
		m.pendingOpenID = ""
		return m.startOpen(id)

	case key.Matches(msg, m.keys.No):
		m.pendingOpenID = ""
		if m.active != nil {
			m.viewMode = ViewEditor
		} else {
			m.viewMode = ViewPrompt
		}
		m.setStatus("Kept unsaved changes")
		return m, nil
	}
	return m, nil
}

func (m Model) startOpen(id string) (tea.Model, tea.Cmd) {
	m.busy = "pulling"
	m.setStatus("Pulling " + id + "…")
	return m, m.openPageCmd(id)
}

func (m Model) startPush() (tea.Model, tea.Cmd) {
	if m.active == nil {
		m.setError("no page open")
		return m, nil
	}
	if err := m.active.SetContent(m.editor.Value()); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.busy = "pushing"
	m.setStatus(fmt.Sprintf("Pushing version %d…", m.active.Version()))
	return m, pushCmd(m.active)
}

func (m *Model) focusEditor() {
	m.editorFocused = true
	m.editor.Focus()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusIsErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusIsErr = true
}

func (m Model) editorHeight() int {
	h := m.height - 6 // header, status bar, borders
	if m.diagnostics != "" {
		h -= strings.Count(m.diagnostics, "\n") + 2
	}
	if h < 3 {
		h = 3
	}
	return h
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}

	switch m.viewMode {
	case ViewPrompt:
		return m.viewPrompt()
	case ViewTitle:
		return m.viewTitle()
	case ViewConfirm:
		return m.viewConfirm()
	case ViewHelp:
		return m.viewHelp()
	default:
		return m.viewEditor()
	}
}

func (m Model) viewPrompt() string {
	box := PromptStyle.Render(
		PromptTitleStyle.Render("Open page") + "\n\n" +
			m.urlInput.View() + "\n\n" +
			HeaderMetaStyle.Render("paste a /wiki/spaces/<key>/pages/<id>/ URL or a raw page ID"),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewTitle() string {
	box := PromptStyle.Render(
		PromptTitleStyle.Render("Edit title") + "\n\n" + m.titleInput.View(),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewConfirm() string {
	box := ConfirmStyle.Render(
		fmt.Sprintf("Unsaved changes to page %s will be discarded.\n\nRe-pull anyway? (y/n)", m.pendingOpenID),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(HelpTitleStyle.Render("Key bindings"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			b.WriteString(fmt.Sprintf("%s  %s\n",
				HelpKeyStyle.Render(fmt.Sprintf("%-10s", binding.Help().Key)),
				HelpDescStyle.Render(binding.Help().Desc)))
		}
		b.WriteString("\n")
	}
	box := HelpStyle.Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewEditor() string {
	var b strings.Builder

	// Header
	title := "no page"
	meta := ""
	if m.active != nil {
		title = m.active.Title()
		dirty := ""
		if m.active.Dirty() {
			dirty = StatusDirtyStyle.Render(" [+]")
		}
		meta = HeaderMetaStyle.Render(fmt.Sprintf("%s/%s · next version %d",
			m.active.SpaceKey(), m.active.ID(), m.active.Version())) + dirty
	}
	b.WriteString(HeaderStyle.Render(title) + meta + "\n")

	// Editor
	style := EditorStyle
	if m.editorFocused {
		style = EditorFocusedStyle
	}
	m.editor.SetHeight(m.editorHeight())
	b.WriteString(style.Render(m.editor.View()) + "\n")

	// Diagnostics
	if m.diagnostics != "" {
		b.WriteString(DiagnosticsStyle.Render(m.diagnostics) + "\n")
	}

	// Status bar
	status := m.status
	if m.statusIsErr {
		status = ErrorStyle.Render(status)
	} else if status != "" {
		status = SuccessStyle.Render(status)
	}
	if m.busy != "" {
		status = StatusBusyStyle.Render(m.busy+"…") + " " + status
	}
	mode := "command"
	if m.editorFocused {
		mode = "edit"
	}
	var help []string
	for _, binding := range m.keys.ShortHelp() {
		help = append(help, binding.Help().Key+" "+binding.Help().Desc)
	}
	b.WriteString(StatusBarStyle.Render(fmt.Sprintf("[%s] %s  %s", mode, status, strings.Join(help, " · "))))

	return b.String()
}
