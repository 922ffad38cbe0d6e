package adapters

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"quartz-skins/internal/ports"
)

// TerminalNotifier renders author-facing diagnostics as a boxed message on
// a terminal stream. It stands in for the in-game exception panel.
type TerminalNotifier struct {
	out        io.Writer
	boxStyle   lipgloss.Style
	titleStyle lipgloss.Style

	mu    sync.Mutex
	count int
}

func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{
		out: out,
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true),
	}
}

func (n *TerminalNotifier) Notify(title string, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count++
	log.Warn().Str("title", title).Msg(message)
	if n.out == nil {
		return
	}
	body := n.titleStyle.Render(title) + "\n" + message
	if _, err := fmt.Fprintln(n.out, n.boxStyle.Render(body)); err != nil {
		log.Debug().Err(err).Msg("failed to write notification")
	}
}

// Count returns how many notifications were raised.
func (n *TerminalNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}

var _ ports.Notifier = (*TerminalNotifier)(nil)
