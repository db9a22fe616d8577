package notifier

import (
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/hockey-report/internal/game"
)

// DryRunNotifier prints what would be posted without sending anything
type DryRunNotifier struct {
	out     io.Writer
	subject string
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout if nil).
func NewDryRunNotifier(out io.Writer, subject string) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out, subject: subject}
}

// Notify prints the messages that would be posted
func (n *DryRunNotifier) Notify(games []*game.Game) error {
	msgs := Messages(games, n.subject)
	for i, msg := range msgs {
		fmt.Fprintf(n.out, "--- Message %d/%d ---\n", i+1, len(msgs))
		fmt.Fprintln(n.out, msg)
		fmt.Fprintln(n.out)
	}
	return nil
}
