package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luckylarry/romance-engine/internal/handlers"
	"github.com/luckylarry/romance-engine/pkg/minigame"
)

const PlaceHolderText = "Type a command (/help for the list)..."

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	view         *handlers.SessionResponse
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	selectedOption int
	notifications  []string
	statusLine     string

	// Quit confirmation state
	showQuitModal bool
}

type actionResultMsg struct {
	result *handlers.ActionResponse
	err    error
}

type sessionMsg struct {
	view *handlers.SessionResponse
	err  error
}

type refreshTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	notifyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	disabledOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, view *handlers.SessionResponse) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		view:         view,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

// clock renders minutes-since-midnight as HH:MM.
func clock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("LOUNGE LIZARD") + "\n\n")
	content.WriteString("Charm your way through the night. Pick a line or type a command.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	if m.view != nil {
		for _, msg := range m.view.State.Messages {
			wrapped := wordwrap.String(msg.Text, chatWidth-6)
			if msg.Speaker == "Larry" {
				content.WriteString(userStyle.Render("Larry: ") + wrapped + "\n\n")
			} else {
				content.WriteString(npcStyle.Render(msg.Speaker+": ") + wrapped + "\n\n")
			}
		}
	}

	for _, n := range m.notifications {
		content.WriteString(notifyStyle.Render(wordwrap.String(n, chatWidth-6)) + "\n")
	}
	if len(m.notifications) > 0 {
		content.WriteString("\n")
	}

	if m.statusLine != "" {
		content.WriteString(wordwrap.String(m.statusLine, chatWidth-6) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n")
	content.WriteString(m.renderOptions(chatWidth))

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) renderOptions(width int) string {
	if m.view == nil || len(m.view.Options) == 0 {
		return promptStyle.Render("No one to talk to here.")
	}
	var b strings.Builder
	b.WriteString(speakerStyle.Render("Say to "+m.view.State.CurrentNPC+":") + "\n")
	for i, opt := range m.view.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt.Text)
		switch {
		case opt.Disabled:
			b.WriteString(disabledOptionStyle.Render(line+" ("+opt.DisabledReason+")") + "\n")
		case i == m.selectedOption:
			b.WriteString(selectedOptionStyle.Render("▶ "+line) + "\n")
		default:
			b.WriteString(optionStyle.Render("  "+line) + "\n")
		}
	}
	return b.String()
}

func (m *ConsoleUI) writeMetadata() {
	if m.view == nil {
		return
	}
	gs := m.view.State

	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")
	content.WriteString(fmt.Sprintf("Score: %d\n", gs.Score))
	content.WriteString(fmt.Sprintf("Time: %s\n", clock(gs.Time)))
	content.WriteString(fmt.Sprintf("Mood: %d\n", gs.Mood))
	content.WriteString(fmt.Sprintf("Relationship: %d\n", gs.Relationship))
	content.WriteString(fmt.Sprintf("Protection: %d\n\n", gs.ProtectionCount))

	content.WriteString("Location:\n" + gs.CurrentLocation + "\n\n")
	content.WriteString("Talking to:\n" + gs.CurrentNPC + "\n\n")

	content.WriteString("Inventory:\n")
	if len(gs.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, it := range gs.Inventory {
		marker := "• "
		if it == gs.SelectedItem {
			marker = "▶ "
		}
		content.WriteString(marker + it + "\n")
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Quests: %d%% complete\n", gs.Progress))
	content.WriteString(fmt.Sprintf("Endings: %d unlocked\n\n", len(gs.UnlockedEndings)))

	modes := []string{}
	if gs.AdultMode {
		modes = append(modes, "adult")
	}
	if gs.EnhancedMode {
		modes = append(modes, "enhanced")
	}
	if gs.AIMode {
		modes = append(modes, "ai")
	}
	if len(modes) > 0 {
		content.WriteString("Modes: " + strings.Join(modes, ", ") + "\n\n")
	}

	if len(gs.Comments) > 0 {
		content.WriteString("Overheard:\n")
		for _, c := range gs.Comments {
			content.WriteString("• " + c + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓ + Enter: Say\n")
	content.WriteString("• /help: All commands\n")
	content.WriteString("• Ctrl+G: Copy session id\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, refreshTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.72) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlG:
			if m.view != nil {
				if err := clipboard.WriteAll(m.view.State.ID.String()); err == nil {
					m.statusLine = "Session id copied to clipboard."
					m.writeChatContent()
				}
			}
			return m, nil

		case tea.KeyUp, tea.KeyDown:
			if m.view != nil && len(m.view.Options) > 0 {
				if msg.Type == tea.KeyUp && m.selectedOption > 0 {
					m.selectedOption--
				}
				if msg.Type == tea.KeyDown && m.selectedOption < len(m.view.Options)-1 {
					m.selectedOption++
				}
				m.writeChatContent()
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input != "" {
				m.textarea.Reset()
				return m.handleCommand(input)
			}
			m.loading = true
			m.err = nil
			return m, m.sendAction(handlers.ActionRequest{Type: "dialog", Option: m.selectedOption})
		}

	case actionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.view.State = msg.result.State
			m.view.Options = msg.result.Options
			m.appendNotifications(msg.result.Notifications)
			if msg.result.Output != "" {
				m.statusLine = msg.result.Output
			}
			if msg.result.Poker != nil {
				m.statusLine = renderPoker(msg.result.Poker)
			}
			if m.selectedOption >= len(m.view.Options) {
				m.selectedOption = 0
			}
		}
		m.writeChatContent()
		m.writeMetadata()

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.view = msg.view
			m.appendNotifications(msg.view.Notifications)
			if m.selectedOption >= len(m.view.Options) {
				m.selectedOption = 0
			}
		}
		m.writeChatContent()
		m.writeMetadata()

	case refreshTickMsg:
		// The session clock runs server-side; poll to keep time, mood and
		// respawns fresh.
		return m, tea.Batch(m.refreshSession(), refreshTick())
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func renderPoker(res *minigame.Result) string {
	cards := make([]string, len(res.Cards))
	for i, c := range res.Cards {
		cards[i] = c.Value + c.Suit
	}
	outcome := "House wins"
	if res.Won {
		outcome = "You win!"
	}
	return fmt.Sprintf("🃏 %s  You: %d vs %d. %s (%+d)",
		strings.Join(cards, " "), res.PlayerScore, res.NPCScore, outcome, res.Payout)
}

func (m *ConsoleUI) appendNotifications(notes []string) {
	m.notifications = append(m.notifications, notes...)
	if len(m.notifications) > 5 {
		m.notifications = m.notifications[len(m.notifications)-5:]
	}
}

const helpText = `
Commands:
• /look, /examine - Study the scene
• /move, /goto <location> - Travel
• /npc <name> - Talk to someone else
• /collect <item>, /select <item>, /use - Items
• /flirt - Deliver a pickup line
• /buy - Buy protection
• /date <npc> <location> - Schedule a date
• /choice <compliment|gift|flirt|story>, /enddate - During a date
• /poker, /bet - Casino table
• /endings - Endings gallery
• /verify, /adult on|off, /enhanced on|off, /ai on|off - Modes
• /save, /load, /reset - Session
`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	on := func() bool { return arg(0) != "off" }

	m.loading = true
	m.err = nil

	switch cmd {
	case "/help":
		m.loading = false
		m.statusLine = helpText
		m.writeChatContent()
		return m, nil
	case "/look":
		return m, m.sendAction(handlers.ActionRequest{Type: "look"})
	case "/examine":
		return m, m.sendAction(handlers.ActionRequest{Type: "examine"})
	case "/endings":
		return m, m.sendAction(handlers.ActionRequest{Type: "endings"})
	case "/move":
		return m, m.sendAction(handlers.ActionRequest{Type: "move"})
	case "/goto":
		return m, m.sendAction(handlers.ActionRequest{Type: "move_to", Location: arg(0)})
	case "/npc":
		return m, m.sendAction(handlers.ActionRequest{Type: "select_npc", NPC: strings.Join(args, " ")})
	case "/collect":
		return m, m.sendAction(handlers.ActionRequest{Type: "collect", Item: arg(0)})
	case "/select":
		return m, m.sendAction(handlers.ActionRequest{Type: "select_item", Item: arg(0)})
	case "/use":
		return m, m.sendAction(handlers.ActionRequest{Type: "use_item"})
	case "/flirt":
		return m, m.sendAction(handlers.ActionRequest{Type: "flirt"})
	case "/buy":
		return m, m.sendAction(handlers.ActionRequest{Type: "buy_protection"})
	case "/date":
		return m, m.sendAction(handlers.ActionRequest{Type: "schedule_date", NPC: arg(0), Location: arg(1), TimeSlot: "tonight"})
	case "/choice":
		return m, m.sendAction(handlers.ActionRequest{Type: "date_choice", Choice: arg(0)})
	case "/enddate":
		return m, m.sendAction(handlers.ActionRequest{Type: "end_date"})
	case "/poker":
		return m, m.sendAction(handlers.ActionRequest{Type: "poker_deal"})
	case "/bet":
		return m, m.sendAction(handlers.ActionRequest{Type: "poker_bet"})
	case "/verify":
		return m, m.sendAction(handlers.ActionRequest{Type: "verify_age"})
	case "/adult":
		return m, m.sendAction(handlers.ActionRequest{Type: "set_adult", Enabled: on()})
	case "/enhanced":
		return m, m.sendAction(handlers.ActionRequest{Type: "set_enhanced", Enabled: on()})
	case "/ai":
		return m, m.sendAction(handlers.ActionRequest{Type: "set_ai", Enabled: on()})
	case "/save":
		return m, m.sessionVerb("save")
	case "/load":
		return m, m.sessionVerb("load")
	case "/reset":
		return m, m.sessionVerb("reset")
	default:
		m.loading = false
		m.err = fmt.Errorf("unknown command %s", cmd)
		m.writeChatContent()
		return m, nil
	}
}

func (m ConsoleUI) sendAction(action handlers.ActionRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := postAction(m.client, m.config.APIBaseURL, m.view.State.ID, action)
		return actionResultMsg{result, err}
	}
}

func (m ConsoleUI) sessionVerb(verb string) tea.Cmd {
	return func() tea.Msg {
		view, err := postSessionVerb(m.client, m.config.APIBaseURL, m.view.State.ID, verb)
		return sessionMsg{view, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		view, err := getSession(m.client, m.config.APIBaseURL, m.view.State.ID)
		return sessionMsg{view, err}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Lounge?"))
	content.WriteString("\n\n")
	content.WriteString("Larry's night isn't over yet. Quit anyway?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
