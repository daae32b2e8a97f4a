package testutil

import (
	"sync"

	"github.com/serafinsanchez/googleclassroom-portal/core"
)

// Entry is a message received by Logger.
type Entry struct {
	Level string
	Msg   string
}

// Logger keeps the messages it receives in memory.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg})
	l.mu.Unlock()
}

// Entries returns the messages logged at level, or all of them when level is empty.
func (l *Logger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("info", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("warn", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("fatal", msg) }

// Mailer records the email messages it is asked to send.
type Mailer struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

var _ core.EmailService = (*Mailer)(nil)

func (m *Mailer) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.messages = append(m.messages, *msg)
	}
}

func (m *Mailer) Messages() []core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.EmailMessage(nil), m.messages...)
}
