package graphics

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TerminalBackend implements the Backend interface by driving a bubbletea
// program that downsamples the 256x240 frame buffer into a grid of styled
// terminal cells.
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow implements the Window interface on top of a bubbletea
// program. Frames are pushed into the program via frameMsg; PollEvents
// drains key presses the program's Update collected since the last call.
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool

	program *tea.Program
	model   *terminalModel
	events  chan InputEvent
	done    chan struct{}
}

func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}
	b.config = config
	b.initialized = true
	return nil
}

func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	// The terminal grid is much coarser than the NES's 256x240 raster: one
	// cell covers an 8x8 block of pixels.
	cols, rows := 256/cellWidthPx, 240/cellHeightPx
	model := &terminalModel{cols: cols, rows: rows}
	w := &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		model:   model,
		events:  make(chan InputEvent, 64),
		done:    make(chan struct{}),
	}
	w.program = tea.NewProgram(model)
	go func() {
		w.program.Run()
		close(w.done)
	}()
	return w, nil
}

func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

func (b *TerminalBackend) IsHeadless() bool { return false }
func (b *TerminalBackend) GetName() string  { return "Terminal" }

func (w *TerminalWindow) SetTitle(title string) { w.title = title }
func (w *TerminalWindow) GetSize() (int, int)   { return w.width, w.height }

func (w *TerminalWindow) ShouldClose() bool {
	select {
	case <-w.done:
		return true
	default:
		return !w.running
	}
}

func (w *TerminalWindow) SwapBuffers() {}

// PollEvents translates buffered bubbletea key messages into InputEvents.
func (w *TerminalWindow) PollEvents() []InputEvent {
	if w.model == nil {
		return nil
	}
	keys := w.model.drainKeys()
	events := make([]InputEvent, 0, len(keys))
	for _, k := range keys {
		if k == "q" || k == "ctrl+c" {
			events = append(events, InputEvent{Type: InputEventTypeQuit})
			continue
		}
		if button, ok := terminalKeyToButton(k); ok {
			events = append(events, InputEvent{Type: InputEventTypeButton, Button: button, Pressed: true})
		}
	}
	return events
}

func (w *TerminalWindow) RenderFrame(frameBuffer [256 * 240]uint32) error {
	if w.model == nil || w.program == nil {
		return nil
	}
	w.program.Send(frameMsg{buffer: frameBuffer})
	return nil
}

func (w *TerminalWindow) Cleanup() error {
	w.running = false
	if w.program != nil {
		w.program.Quit()
	}
	return nil
}

const (
	cellWidthPx  = 8
	cellHeightPx = 8
)

// terminalModel is the bubbletea model driving the terminal frontend: a
// grid of lipgloss-styled cells, one per downsampled block of the NES
// frame buffer, plus a small buffer of unconsumed key presses for
// PollEvents to drain.
type terminalModel struct {
	cols, rows int
	cells      []lipgloss.Style
	pendingKey []string
}

type frameMsg struct {
	buffer [256 * 240]uint32
}

func (m *terminalModel) Init() tea.Cmd { return nil }

func (m *terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.pendingKey = append(m.pendingKey, msg.String())
	case frameMsg:
		m.cells = downsampleToCells(msg.buffer, m.cols, m.rows)
	}
	return m, nil
}

func (m *terminalModel) drainKeys() []string {
	keys := m.pendingKey
	m.pendingKey = nil
	return keys
}

func (m *terminalModel) View() string {
	if len(m.cells) == 0 {
		return "waiting for frame...\n"
	}
	var b strings.Builder
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			b.WriteString(m.cells[y*m.cols+x].Render("  "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// downsampleToCells averages each cellWidthPx x cellHeightPx block of the
// frame buffer into one truecolor-background lipgloss style.
func downsampleToCells(buffer [256 * 240]uint32, cols, rows int) []lipgloss.Style {
	cells := make([]lipgloss.Style, cols*rows)
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			var rSum, gSum, bSum, n uint32
			for dy := 0; dy < cellHeightPx; dy++ {
				py := cy*cellHeightPx + dy
				for dx := 0; dx < cellWidthPx; dx++ {
					px := cx*cellWidthPx + dx
					pixel := buffer[py*256+px]
					rSum += (pixel >> 16) & 0xFF
					gSum += (pixel >> 8) & 0xFF
					bSum += pixel & 0xFF
					n++
				}
			}
			hex := fmt.Sprintf("#%02x%02x%02x", rSum/n, gSum/n, bSum/n)
			cells[cy*cols+cx] = lipgloss.NewStyle().Background(lipgloss.Color(hex))
		}
	}
	return cells
}

// terminalKeyToButton maps a WASD+JK convention onto NES controller buttons.
func terminalKeyToButton(key string) (Button, bool) {
	switch key {
	case "w", "up":
		return ButtonUp, true
	case "s", "down":
		return ButtonDown, true
	case "a", "left":
		return ButtonLeft, true
	case "d", "right":
		return ButtonRight, true
	case "j":
		return ButtonA, true
	case "k":
		return ButtonB, true
	case "enter":
		return ButtonStart, true
	case " ":
		return ButtonSelect, true
	default:
		return ButtonUnknown, false
	}
}
