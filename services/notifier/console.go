package notifsvc

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tomeducation/admin/core"
)

// Message is one transient user-visible notification.
type Message struct {
	Kind string // "success" | "error"
	Text string
}

var (
	// SentMessages records notifications when the mock is in use.
	SentMessages = make([]Message, 0)
	mu           sync.Mutex
)

type consoleNotifier struct {
	out           io.Writer
	disableOutput bool
}

var _ core.Notifier = (*consoleNotifier)(nil)

func NewConsoleNotifier() core.Notifier {
	return &consoleNotifier{out: os.Stdout}
}

// NewConsoleNotifierMock records messages instead of printing them;
// for tests.
func NewConsoleNotifierMock() core.Notifier {
	return &consoleNotifier{out: io.Discard, disableOutput: true}
}

// ClearSentMessages resets the recorded notifications between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

func (n *consoleNotifier) notify(kind, text string) {
	if n.disableOutput {
		mu.Lock()
		SentMessages = append(SentMessages, Message{Kind: kind, Text: text})
		mu.Unlock()
		return
	}
	_, _ = fmt.Fprintf(n.out, "[%s] %s\n", kind, text)
}

func (n *consoleNotifier) Success(msg string) { n.notify("success", msg) }
func (n *consoleNotifier) Error(msg string)   { n.notify("error", msg) }
