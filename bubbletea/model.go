package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatstream"
)

var _ tea.Model = Model{}

const updateBuffer = 256

// Model is the Bubble Tea model for the chatstream TUI.
//
// Replies stream into the store on session goroutines. The model only
// receives notifications and re-renders the conversation on display, so a
// reply keeps streaming while another conversation is open.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	store  chatstream.ConversationStore
	chats  chatstream.ChatService
	sender *chatstream.Sender
	theme  chatstream.Theme
	styles Styles

	current     string
	sidebarOpen bool
	selected    int
	creating    bool
	pendingSend string // prompt waiting for a new chat

	assistant map[string]*AssistantTextBlock              // keyed by message ID
	streams   map[string]map[string]chatstream.StreamHandle // chat ID -> placeholder ID
	failures  map[string]error                              // keyed by placeholder ID
	updates   chan tea.Msg

	ctx    context.Context
	cancel context.CancelFunc
	err    error
	ready  bool
	width  int
	height int
}

// New creates a TUI Model. Conversations are listed through chats on
// Init; sends go through sender, which must write to store.
func New(store chatstream.ConversationStore, chats chatstream.ChatService, sender *chatstream.Sender, theme chatstream.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		Input:     ti,
		store:     store,
		chats:     chats,
		sender:    sender,
		theme:     theme,
		styles:    NewStyles(theme),
		assistant: make(map[string]*AssistantTextBlock),
		streams:   make(map[string]map[string]chatstream.StreamHandle),
		failures:  make(map[string]error),
		updates:   make(chan tea.Msg, updateBuffer),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Running reports whether any reply is streaming.
func (m Model) Running() bool { return len(m.streams) > 0 }

// Streaming reports whether a reply is streaming into chatID.
func (m Model) Streaming(chatID string) bool { return len(m.streams[chatID]) > 0 }

// Current returns the ID of the conversation on display.
func (m Model) Current() string { return m.current }

// SidebarOpen reports whether the chat list is shown.
func (m Model) SidebarOpen() bool { return m.sidebarOpen }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		loadChats(m.ctx, m.chats),
		listen(m.ctx, m.updates),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChatsLoadedMsg:
		return m.handleChatsLoaded(msg), nil

	case ChatCreatedMsg:
		return m.handleChatCreated(msg), nil

	case DeltaMsg:
		if msg.ChatID == m.current {
			m = m.refresh()
		}
		return m, listen(m.ctx, m.updates)

	case StreamDoneMsg:
		m = m.finishStream(msg.ChatID, msg.MessageID)
		return m, listen(m.ctx, m.updates)

	case StreamFailedMsg:
		m.failures[msg.MessageID] = msg.Err
		m = m.finishStream(msg.ChatID, msg.MessageID)
		return m, listen(m.ctx, m.updates)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.sidebarOpen {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	main := m.header() + "\n" + m.Viewport.View()
	if m.sidebarOpen {
		entries := sidebarEntries(m.store.Conversations(), m.Streaming)
		side := renderSidebar(entries, m.selected, sidebarWidth, m.Viewport.Height+headerHeight, m.styles)
		main = lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}

	var b strings.Builder
	b.WriteString(main)
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

const (
	headerHeight = 1
	inputHeight  = 1
	statusHeight = 1
	borderHeight = 2 // newlines between sections
	sidebarGap   = 2 // sidebar border and padding
)

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width, m.height = msg.Width, msg.Height
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, 1)
		m.ready = true
	}
	return m.layout().refresh()
}

// layout sizes the viewport and input for the window and sidebar state.
func (m Model) layout() Model {
	if !m.ready {
		return m
	}
	vpHeight := m.height - headerHeight - inputHeight - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := m.width
	if m.sidebarOpen {
		vpWidth -= sidebarWidth + sidebarGap
	}
	if vpWidth < 1 {
		vpWidth = 1
	}
	m.Viewport.Width = vpWidth
	m.Viewport.Height = vpHeight
	m.Input.Width = m.width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelAll()
		return m, tea.Quit

	case tea.KeyCtrlS:
		m.sidebarOpen = !m.sidebarOpen
		var cmd tea.Cmd
		if m.sidebarOpen {
			m.selected = m.indexOf(m.current)
			m.Input.Blur()
		} else {
			cmd = m.Input.Focus()
		}
		return m.layout().refresh(), cmd

	case tea.KeyCtrlN:
		return m.startCreate()

	case tea.KeyEsc:
		return m.cancelCurrent().refresh(), nil
	}

	if m.sidebarOpen {
		return m.handleSidebarKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		if m.current == "" {
			m.pendingSend = text
			return m.startCreate()
		}
		return m.send(text).refresh(), nil
	}

	// Only non-character keys reach the viewport so typing j/k does not
	// scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.store.Conversations()
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(convs)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected < len(convs) {
			m.current = convs[m.selected].ID
		}
		m.sidebarOpen = false
		cmd := m.Input.Focus()
		return m.layout().refresh(), cmd
	}
	return m, nil
}

func (m Model) handleChatsLoaded(msg ChatsLoadedMsg) Model {
	if msg.Err != nil {
		m.err = fmt.Errorf("load chats: %w", msg.Err)
		return m
	}
	// Put prepends, so insert oldest first to keep the server's order.
	// Chats already in the store may hold a local exchange that is still
	// streaming; the server's copy must not replace it.
	for i := len(msg.Chats) - 1; i >= 0; i-- {
		if _, err := m.store.Conversation(msg.Chats[i].ID); err == nil {
			continue
		}
		m.store.Put(msg.Chats[i])
	}
	if m.current == "" && len(msg.Chats) > 0 {
		m.current = msg.Chats[0].ID
	}
	return m.refresh()
}

func (m Model) startCreate() (tea.Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	m.creating = true
	return m, createChat(m.ctx, m.chats)
}

func (m Model) handleChatCreated(msg ChatCreatedMsg) Model {
	m.creating = false
	if msg.Err != nil {
		m.err = fmt.Errorf("create chat: %w", msg.Err)
		m.pendingSend = ""
		return m
	}
	m.store.Put(msg.Conversation)
	m.current = msg.Conversation.ID
	m.selected = 0
	if text := m.pendingSend; text != "" {
		m.pendingSend = ""
		m = m.send(text)
	}
	return m.refresh()
}

// send starts a reply in the current conversation.
func (m Model) send(text string) Model {
	ex, err := m.sender.Send(m.ctx, m.current, text,
		chatstream.WithOnDelta(func(ex chatstream.Exchange, _ string) {
			m.tryPost(DeltaMsg{ChatID: ex.ChatID, MessageID: ex.PlaceholderID})
		}),
		chatstream.WithOnDone(func(ex chatstream.Exchange) {
			m.post(StreamDoneMsg{ChatID: ex.ChatID, MessageID: ex.PlaceholderID})
		}),
		chatstream.WithOnFailure(func(ex chatstream.Exchange, err error) {
			m.post(StreamFailedMsg{ChatID: ex.ChatID, MessageID: ex.PlaceholderID, Err: err})
		}),
	)
	if err != nil {
		m.err = err
		return m
	}
	m.err = nil
	if m.streams[ex.ChatID] == nil {
		m.streams[ex.ChatID] = make(map[string]chatstream.StreamHandle)
	}
	m.streams[ex.ChatID][ex.PlaceholderID] = ex.Handle
	return m
}

// post delivers a terminal notification. It blocks until the model takes
// it or the model shuts down.
func (m Model) post(msg tea.Msg) {
	select {
	case m.updates <- msg:
	case <-m.ctx.Done():
	}
}

// tryPost delivers a delta notification unless the queue is full. A dropped
// notification loses nothing: the text is in the store and the next
// notification re-renders it.
func (m Model) tryPost(msg tea.Msg) {
	select {
	case m.updates <- msg:
	default:
	}
}

func (m Model) finishStream(chatID, messageID string) Model {
	if handles, ok := m.streams[chatID]; ok {
		delete(handles, messageID)
		if len(handles) == 0 {
			delete(m.streams, chatID)
		}
	}
	if chatID == m.current {
		m = m.refresh()
	}
	return m
}

// cancelCurrent stops every reply streaming into the conversation on
// display. Partial text stays in place.
func (m Model) cancelCurrent() Model {
	for _, h := range m.streams[m.current] {
		h.Cancel()
	}
	delete(m.streams, m.current)
	return m
}

func (m Model) cancelAll() {
	for chatID, handles := range m.streams {
		for _, h := range handles {
			h.Cancel()
		}
		delete(m.streams, chatID)
	}
	m.cancel()
}

func (m Model) indexOf(chatID string) int {
	for i, c := range m.store.Conversations() {
		if c.ID == chatID {
			return i
		}
	}
	return 0
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	if m.current == "" {
		return ""
	}
	conv, err := m.store.Conversation(m.current)
	if err != nil {
		return ""
	}
	var blocks []MessageBlock
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.blockFor(msg))
		if ferr, ok := m.failures[msg.ID]; ok {
			blocks = append(blocks, NewErrorBlock(ferr, m.styles))
		}
	}
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString(blockSeparator(blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) blockFor(msg chatstream.Message) MessageBlock {
	switch {
	case msg.IsUser:
		return NewUserMessageBlock(msg.Content, m.styles)
	case msg.Pending():
		return NewPendingBlock(m.styles)
	default:
		b, ok := m.assistant[msg.ID]
		if !ok {
			b = NewAssistantTextBlock(m.theme)
			m.assistant[msg.ID] = b
		}
		b.Sync(msg.Content)
		return b
	}
}

func (m Model) header() string {
	if m.current == "" {
		return m.styles.Muted.Render(fitTitle("No chat selected", m.Viewport.Width))
	}
	conv, err := m.store.Conversation(m.current)
	if err != nil {
		return m.styles.Error.Render(fitTitle(err.Error(), m.Viewport.Width))
	}
	return m.styles.Accent.Render(fitTitle(displayTitle(conv.Title), m.Viewport.Width))
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	switch {
	case m.sidebarOpen:
		return m.styles.Muted.Render("↑/↓ select, Enter to open, Ctrl+S to close")
	case m.creating:
		return m.styles.Muted.Render("Creating chat...")
	case m.Streaming(m.current):
		return m.styles.Muted.Render("Generating... Esc to stop")
	case m.Running():
		return m.styles.Muted.Render(fmt.Sprintf("%d chat(s) generating in background", len(m.streams)))
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+S chats, Ctrl+N new chat, Ctrl+C to quit")
}

func loadChats(ctx context.Context, chats chatstream.ChatService) tea.Cmd {
	return func() tea.Msg {
		convs, err := chats.ListChats(ctx)
		return ChatsLoadedMsg{Chats: convs, Err: err}
	}
}

func createChat(ctx context.Context, chats chatstream.ChatService) tea.Cmd {
	return func() tea.Msg {
		conv, err := chats.CreateChat(ctx)
		return ChatCreatedMsg{Conversation: conv, Err: err}
	}
}

// listen waits for the next notification from a streaming session.
func listen(ctx context.Context, ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-ch:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}
