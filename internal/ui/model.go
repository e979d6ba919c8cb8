package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/watch"
)

// ViewMode represents the current view in the TUI
type ViewMode int

const (
	ViewLoading ViewMode = iota
	ViewTemplates
	ViewActions
	ViewTopic
	ViewFiles
	ViewProcessing
	ViewSuccess
	ViewError
)

// Messages produced by async commands
type vaultLoadedMsg struct {
	templates []models.TemplateInfo
	warnings  []errors.Warning
	err       error
}

type filesLoadedMsg struct {
	action models.Action
	files  []models.OutputFile
	err    error
}

type actionDoneMsg struct {
	action models.Action
	result *service.Result
	err    error
}

type outputsChangedMsg struct {
	watcher *watch.OutputsWatcher
}

func loadVaultCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		templates, warnings, err := svc.LoadVault()
		warnings = append(warnings, svc.CheckClipboard()...)
		return vaultLoadedMsg{templates: templates, warnings: warnings, err: err}
	}
}

func loadFilesCmd(svc *service.Service, templateDir string, action models.Action) tea.Cmd {
	return func() tea.Msg {
		files, err := svc.FilesForAction(templateDir, action)
		return filesLoadedMsg{action: action, files: files, err: err}
	}
}

func waitForChangeCmd(w *watch.OutputsWatcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Events(); !ok {
			return nil
		}
		return outputsChangedMsg{watcher: w}
	}
}

// KeyMap defines all key bindings
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Retry key.Binding
	Quit  key.Binding
	Help  key.Binding
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.Help, k.Quit}
}

// FullHelp returns keybindings to show in the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Back, k.Retry, k.Help, k.Quit},
	}
}

var keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "back"),
	),
	Retry: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "retry"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// Model represents the TUI application state
type Model struct {
	service    *service.Service
	log        *zap.SugaredLogger
	errHandler *errors.TUIErrorHandler
	viewMode   ViewMode

	// UI components
	templateList list.Model
	fileList     list.Model
	actionForm   *SelectForm
	topicForm    *TopicForm
	spinner      spinner.Model
	viewport     viewport.Model
	help         help.Model
	keys         KeyMap

	glamourRenderer *glamour.TermRenderer

	// Data
	warnings []errors.Warning
	template *models.TemplateInfo
	action   models.Action
	result   *service.Result
	err      error
	// returnTo is where a non-retryable error sends the user
	returnTo ViewMode

	watcher *watch.OutputsWatcher

	// Window dimensions
	width  int
	height int

	statusMsg string
}

// NewModel creates a new TUI model
func NewModel(svc *service.Service, log *zap.SugaredLogger) (*Model, error) {
	initializeColors()
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	templateList := newList()
	fileList := newList()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	vp := viewport.New(80, 20) // Default size, will be updated on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle()

	renderer, err := newPreviewRenderer(76)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create glamour renderer")
	}

	return &Model{
		service:         svc,
		log:             log,
		errHandler:      errors.NewTUIErrorHandler(false, log),
		viewMode:        ViewLoading,
		templateList:    templateList,
		fileList:        fileList,
		actionForm:      NewActionForm(),
		spinner:         sp,
		viewport:        vp,
		help:            help.New(),
		keys:            keys,
		glamourRenderer: renderer,
	}, nil
}

func newList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.Title = "" // We'll handle title in the view
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	keyMap := list.DefaultKeyMap()
	keyMap.Filter = key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	)
	// q and esc are handled by the model
	keyMap.Quit = key.NewBinding(key.WithDisabled())
	l.KeyMap = keyMap
	return l
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadVaultCmd(m.service), m.spinner.Tick)
}

// Close releases the outputs watcher.
func (m *Model) Close() {
	m.stopWatcher()
}

// Update handles messages and key presses
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.viewMode != ViewLoading && m.viewMode != ViewProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case vaultLoadedMsg:
		return m.handleVaultLoaded(msg)

	case filesLoadedMsg:
		return m.handleFilesLoaded(msg)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case outputsChangedMsg:
		if msg.watcher != m.watcher {
			return m, nil
		}
		cmds := []tea.Cmd{waitForChangeCmd(m.watcher)}
		if m.viewMode == ViewFiles && m.fileList.FilterState() != list.Filtering {
			m.log.Debugw("outputs changed externally, reloading", "dir", m.watcher.Dir())
			cmds = append(cmds, loadFilesCmd(m.service, m.template.Path, m.action))
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopWatcher()
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.viewMode {
	case ViewTemplates:
		return m.updateTemplates(msg)
	case ViewActions:
		return m.updateActions(msg)
	case ViewTopic:
		return m.updateTopic(msg)
	case ViewFiles:
		return m.updateFiles(msg)
	case ViewSuccess:
		return m.updateSuccess(msg)
	case ViewError:
		return m.updateError(msg)
	}
	// Loading and processing ignore keys other than ctrl+c
	return m, nil
}

func (m Model) updateTemplates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.templateList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.templateList, cmd = m.templateList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatcher()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		item, ok := m.templateList.SelectedItem().(models.TemplateInfo)
		if !ok {
			return m, nil
		}
		m.selectTemplate(item)
		cmd := m.watchCmd()
		return m, cmd
	}

	var cmd tea.Cmd
	m.templateList, cmd = m.templateList.Update(msg)
	return m, cmd
}

func (m Model) updateActions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatcher()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.stopWatcher()
		m.template = nil
		m.statusMsg = ""
		m.viewMode = ViewTemplates
		return m, nil
	}

	m.actionForm.Update(msg)
	if !m.actionForm.IsSubmitted() {
		return m, nil
	}
	m.actionForm.Reset()

	action, ok := m.actionForm.SelectedAction()
	if !ok {
		return m, nil
	}
	m.action = action
	m.statusMsg = ""

	switch {
	case action == models.ActionCreate:
		m.topicForm = NewTopicForm()
		m.viewMode = ViewTopic
		return m, nil
	case action.NeedsFile():
		m.viewMode = ViewProcessing
		return m, tea.Batch(loadFilesCmd(m.service, m.template.Path, action), m.spinner.Tick)
	default:
		return m.run(action, "", nil)
	}
}

func (m Model) updateTopic(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.viewMode = ViewActions
		return m, nil
	}
	cmd := m.topicForm.Update(msg)
	if m.topicForm.IsSubmitted() {
		return m.run(models.ActionCreate, m.topicForm.Value(), nil)
	}
	return m, cmd
}

func (m Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.fileList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatcher()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.viewMode = ViewActions
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		file, ok := m.fileList.SelectedItem().(models.OutputFile)
		if !ok {
			return m, nil
		}
		return m.run(m.action, "", &file)
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m Model) updateSuccess(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatcher()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Back):
		m.viewMode = ViewActions
		m.result = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	retryable := errors.GetAppError(m.err).IsRetryable()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.stopWatcher()
		return m, tea.Quit
	case retryable && key.Matches(msg, m.keys.Retry):
		m.err = nil
		m.viewMode = ViewLoading
		return m, tea.Batch(loadVaultCmd(m.service), m.spinner.Tick)
	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Back):
		if m.returnTo == ViewLoading {
			// Nothing to go back to without a vault
			return m, nil
		}
		m.err = nil
		m.viewMode = m.returnTo
	}
	return m, nil
}

// run executes a flow off the update loop. file is nil for create and capture.
func (m Model) run(action models.Action, topic string, file *models.OutputFile) (tea.Model, tea.Cmd) {
	svc := m.service
	templateDir := m.template.Path
	if file != nil && m.watcher != nil {
		m.watcher.MarkOwnWrite(file.Path)
	}

	m.viewMode = ViewProcessing
	do := func() tea.Msg {
		ctx := context.Background()
		var (
			res *service.Result
			err error
		)
		switch action {
		case models.ActionCreate:
			res, err = svc.CreateTopic(ctx, templateDir, topic)
		case models.ActionCapture:
			res, err = svc.Capture(ctx, templateDir)
		case models.ActionFill:
			res, err = svc.Fill(ctx, file.Path)
		case models.ActionSelect:
			res, err = svc.CopyPrompt(ctx, templateDir, *file)
		case models.ActionReset:
			res, err = svc.Reset(file.Path)
		case models.ActionDelete:
			res, err = svc.Delete(file.Path)
		default:
			err = errors.ValidationError("Action", "a known action")
		}
		return actionDoneMsg{action: action, result: res, err: err}
	}
	return m, tea.Batch(do, m.spinner.Tick)
}

func (m Model) handleVaultLoaded(msg vaultLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.showError(msg.err, ViewLoading)
		return m, nil
	}

	m.warnings = msg.warnings
	items := make([]list.Item, len(msg.templates))
	for i, t := range msg.templates {
		items[i] = t
	}
	cmd := m.templateList.SetItems(items)
	m.viewMode = ViewTemplates
	return m, cmd
}

func (m Model) handleFilesLoaded(msg filesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.action != m.action || m.template == nil {
		return m, nil
	}
	if msg.err != nil {
		m.showError(msg.err, ViewActions)
		return m, nil
	}
	if len(msg.files) == 0 {
		if m.viewMode == ViewFiles || m.viewMode == ViewProcessing {
			m.viewMode = ViewActions
			m.statusMsg = fmt.Sprintf("No files to %s in %s", msg.action, m.template.Name)
		}
		return m, nil
	}

	items := make([]list.Item, len(msg.files))
	for i, f := range msg.files {
		items[i] = f
	}
	cmd := m.fileList.SetItems(items)
	// a reload landing after the user left the list only refreshes its items
	if m.viewMode == ViewProcessing {
		m.fileList.ResetSelected()
		m.viewMode = ViewFiles
	}
	return m, cmd
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.showError(msg.err, ViewActions)
		return m, nil
	}

	res := msg.result
	m.result = res
	m.statusMsg = ""
	if m.watcher != nil {
		m.watcher.MarkOwnWrite(res.Path)
	}
	m.viewport.SetContent(renderPreview(m.glamourRenderer, previewMarkdown(res)))
	m.viewport.GotoTop()
	m.viewMode = ViewSuccess

	// Creating the first output makes the outputs directory watchable
	cmd := m.watchCmd()
	return m, cmd
}

func (m *Model) showError(err error, returnTo ViewMode) {
	appErr := m.errHandler.HandleError(err)
	m.err = appErr
	m.returnTo = returnTo
	m.viewMode = ViewError
}

func (m *Model) selectTemplate(t models.TemplateInfo) {
	m.stopWatcher()
	m.template = &t
	m.actionForm = NewActionForm()
	m.statusMsg = ""
	m.viewMode = ViewActions
}

// watchCmd starts watching the selected template's outputs directory when it exists.
func (m *Model) watchCmd() tea.Cmd {
	if m.template == nil || m.watcher != nil {
		return nil
	}
	dir := models.OutputsPath(m.template.Path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil
	}
	w, err := watch.NewOutputsWatcher(dir, watch.DefaultDebounce)
	if err != nil {
		m.log.Debugw("outputs watcher unavailable", "dir", dir, "error", err)
		return nil
	}
	m.watcher = w
	return waitForChangeCmd(w)
}

func (m *Model) stopWatcher() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		m.log.Debugw("closing outputs watcher", "error", err)
	}
	m.watcher = nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	listHeight := height - 6
	if listHeight < 5 {
		listHeight = 5
	}
	m.templateList.SetSize(width-4, listHeight)
	m.fileList.SetSize(width-4, listHeight)

	viewportWidth := width - 8
	if viewportWidth < 40 {
		viewportWidth = 40 // Minimum readable width
	}
	m.viewport.Width = viewportWidth
	m.viewport.Height = listHeight - 2
	if renderer, err := newPreviewRenderer(viewportWidth - 4); err == nil {
		m.glamourRenderer = renderer
		if m.result != nil {
			m.viewport.SetContent(renderPreview(renderer, previewMarkdown(m.result)))
		}
	}
}

// View renders the current view
func (m Model) View() string {
	var content string
	switch m.viewMode {
	case ViewLoading:
		content = StyleLoading.Render(m.spinner.View() + " Loading vault " + m.service.VaultPath())
	case ViewTemplates:
		content = m.renderTemplates()
	case ViewActions:
		content = m.renderActions()
	case ViewTopic:
		content = lipgloss.JoinVertical(lipgloss.Left,
			CreateHeader("Esc", m.template.Name+" › new topic"),
			"",
			m.topicForm.View(),
			"",
			CreateHelp([]string{"Enter create and copy prompt", "Esc back"}, m.width),
		)
	case ViewFiles:
		content = lipgloss.JoinVertical(lipgloss.Left,
			CreateHeader("Esc", fmt.Sprintf("%s › %s", m.template.Name, m.action)),
			m.fileList.View(),
			CreateHelp([]string{"Enter " + string(m.action), "/ filter", "Esc back", "q quit"}, m.width),
		)
	case ViewProcessing:
		content = StyleLoading.Render(m.spinner.View() + " Working...")
	case ViewSuccess:
		content = m.renderSuccess()
	case ViewError:
		content = m.renderError()
	}
	return AddMainPadding(content)
}

func (m Model) renderTemplates() string {
	parts := []string{CreateMainHeader("Prompt vault"), CreateMetadata(m.service.VaultPath())}
	for _, w := range m.warnings {
		parts = append(parts, CreateStatus("⚠️  "+w.Message, "warning"))
	}
	parts = append(parts, m.templateList.View())
	if m.help.ShowAll {
		parts = append(parts, m.help.View(m.keys))
	} else {
		parts = append(parts, CreateHelp([]string{"Enter select", "/ filter", "? help", "q quit"}, m.width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderActions() string {
	parts := []string{CreateHeader("Esc", m.template.Name), ""}
	if m.statusMsg != "" {
		parts = append(parts, CreateStatus(m.statusMsg, "info"), "")
	}
	parts = append(parts, m.actionForm.View(), "",
		CreateHelp([]string{"↑/↓ move", "Enter choose", "Esc templates", "q quit"}, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSuccess() string {
	if m.result == nil {
		return ""
	}
	parts := []string{CreateStatus("✓ "+m.result.Message, "success")}
	for _, w := range m.result.Warnings {
		parts = append(parts, CreateStatus("⚠️  "+w.Message, "warning"))
	}
	if m.result.Path != "" || m.result.Prompt != "" {
		parts = append(parts, StyleContentContainer.Render(m.viewport.View()))
	}
	parts = append(parts, CreateHelp([]string{"Enter continue", "q quit"}, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderError() string {
	icon, color := m.errHandler.GetErrorStyle(m.err)
	title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(icon + " Error")

	lines := strings.Split(m.errHandler.FormatError(m.err), "\n")
	body := []string{StyleText.Render(lines[0])}
	for _, hint := range lines[1:] {
		body = append(body, StyleTextMuted.Render("  "+hint))
	}

	var helpParts []string
	if errors.GetAppError(m.err).IsRetryable() {
		helpParts = append(helpParts, "r retry")
	}
	if m.returnTo != ViewLoading {
		helpParts = append(helpParts, "Enter back")
	}
	helpParts = append(helpParts, "q quit")

	parts := append([]string{title, ""}, body...)
	parts = append(parts, "", CreateHelp(helpParts, m.width))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// TemplateName returns the selected template's name, or "" on the template list.
func (m Model) TemplateName() string {
	if m.template == nil {
		return ""
	}
	return m.template.Name
}

// Mode returns the current view
func (m Model) Mode() ViewMode {
	return m.viewMode
}
