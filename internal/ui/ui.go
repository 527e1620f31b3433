package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	PipelineView
	ReviewView
	ConfirmView
	BuildView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.PipelineEngine
	owner  string
	verify tasks.VerifyOpts
	width  int
	height int

	promptInput textinput.Model
	reviewList  list.Model

	generated    *models.GeneratedPlaylist
	verification *models.VerificationResponse
	rejected     []string

	progressChan   chan tasks.ProgressUpdate
	progress       tasks.ProgressUpdate
	pipelineResult verifiedMsg
	building       bool
	buildResult    *tasks.BuildResult
	buildErr       error

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.PipelineEngine, owner string, verify tasks.VerifyOpts) *Model {
	input := textinput.New()
	input.Placeholder = "a rainy day jazz playlist"
	input.CharLimit = 300
	input.Width = 60
	input.Focus()

	return &Model{
		ctx:         ctx,
		view:        PromptView,
		engine:      engine,
		owner:       owner,
		verify:      verify,
		promptInput: input,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.reviewList.Width() == 0 {
			m.reviewList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case verifiedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.generated = msg.playlist
		m.verification = msg.response
		m.rejected = msg.response.Rejected
		m.buildReviewList()
		m.view = ReviewView
		return m, nil

	case buildCompleteMsg:
		m.buildResult = msg.result
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateChildren(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case PipelineView:
		return m.renderPipeline()
	case ReviewView:
		return m.renderReview()
	case ConfirmView:
		return m.renderConfirm()
	case BuildView:
		return m.renderBuild()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.promptInput.Value() != "" {
			m.view = PipelineView
			return m, m.startPipeline()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PromptView
		return m, nil
	case " ":
		m.toggleSelected()
		return m, nil
	case "enter":
		if m.includedCount() > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.reviewList, cmd = m.reviewList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = ReviewView
		return m, nil
	case "y":
		m.view = BuildView
		return m, m.startBuild()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PromptView
		m.promptInput.SetValue("")
		m.promptInput.Focus()
		m.generated = nil
		m.verification = nil
		m.rejected = nil
		m.buildResult = nil
		m.building = false
		m.err = nil
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.promptInput, cmd = m.promptInput.Update(msg)
	case ReviewView:
		m.reviewList, cmd = m.reviewList.Update(msg)
	}
	return m, cmd
}

// startPipeline runs generate then verify in the background, streaming
// progress through the channel. The completion message is delivered by
// waitForProgress when the channel closes.
func (m *Model) startPipeline() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.building = false
	prompt := m.promptInput.Value()

	go func() {
		playlist, err := m.engine.Generate(m.ctx, m.progressChan, services.GenerationRequest{Prompt: prompt})
		if err != nil {
			m.pipelineResult = verifiedMsg{err: err}
			close(m.progressChan)
			return
		}

		response, err := m.engine.Verify(m.ctx, m.progressChan, playlist.Tracks, m.verify)
		m.pipelineResult = verifiedMsg{playlist: playlist, response: response, err: err}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) startBuild() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.building = true

	payload := models.PlaylistPayload{
		Name:        m.generated.Title,
		Description: m.generated.Description,
		Tracks:      m.includedTracks(),
	}

	go func() {
		result, err := m.engine.Build(m.ctx, m.progressChan, m.owner, models.BuildRequest{PlaylistData: &payload})
		m.buildResult = result
		m.buildErr = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			if m.building {
				return buildCompleteMsg{result: m.buildResult, err: m.buildErr}
			}
			return m.pipelineResult
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) buildReviewList() {
	items := make([]list.Item, len(m.verification.Verified))
	for i, track := range m.verification.Verified {
		items[i] = reviewItem{track: track, included: true}
	}

	m.reviewList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.reviewList.Title = fmt.Sprintf("Review '%s'", m.generated.Title)
	m.reviewList.SetSize(m.width-4, m.height-8)
}

func (m *Model) toggleSelected() {
	index := m.reviewList.Index()
	items := m.reviewList.Items()
	if index < 0 || index >= len(items) {
		return
	}
	if item, ok := items[index].(reviewItem); ok {
		item.included = !item.included
		m.reviewList.SetItem(index, item)
	}
}

func (m *Model) includedTracks() []models.Track {
	var tracks []models.Track
	for _, item := range m.reviewList.Items() {
		if review, ok := item.(reviewItem); ok && review.included {
			tracks = append(tracks, review.track)
		}
	}
	return tracks
}

func (m *Model) includedCount() int {
	return len(m.includedTracks())
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("Describe your playlist")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.promptInput.View(), helpView)
}

func (m *Model) renderPipeline() string {
	title := styles.title.Render("Building Candidates")

	var phase string
	switch m.progress.Phase {
	case tasks.Generating:
		phase = "Generating candidate tracks..."
	case tasks.Verifying:
		phase = fmt.Sprintf("Verifying against catalog (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderReview() string {
	var rejected string
	if len(m.rejected) > 0 {
		rejected = styles.warn.Render(fmt.Sprintf("\n%d tracks not found in catalog", len(m.rejected)))
	}

	confirmKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "build"))
	helpKeys := []key.Binding{m.keys.toggle, confirmKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", m.reviewList.View(), rejected, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Publish '%s'?", m.generated.Title))
	info := fmt.Sprintf("\nTracks: %d\n", m.includedCount())

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderBuild() string {
	title := styles.title.Render("Publishing Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.Persisting:
		phase = "Saving draft..."
	case tasks.Publishing:
		phase = "Publishing to provider..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		body := styles.err.Render(fmt.Sprintf("Failed: %v", m.err))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	if m.buildResult == nil {
		body := styles.err.Render("No result available")
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	title := styles.ok.Render("✓ Playlist Published")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nTracks: %d\nProvider ID: %s",
		m.buildResult.Playlist.Name(),
		len(m.buildResult.Playlist.Tracks()),
		m.buildResult.ProviderID(),
	)

	if m.buildResult.AlreadyBuilt {
		info += styles.warn.Render("\n\nAlready published; no new playlist was created.")
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
