package app

import (
	"strings"
	"sync"
)

// logSink is an io.Writer that forwards complete log lines to the UI log pane.
// Lines written before the pane exists are buffered.
type logSink struct {
	mu      sync.Mutex
	partial strings.Builder
	pending []string
	emit    func(string)
}

func newLogSink() *logSink {
	return &logSink{}
}

func (l *logSink) Write(p []byte) (int, error) {
	l.mu.Lock()
	l.partial.Write(p)
	text := l.partial.String()
	l.partial.Reset()
	lines := strings.Split(text, "\n")
	// The last element is an incomplete line (or empty).
	l.partial.WriteString(lines[len(lines)-1])
	lines = lines[:len(lines)-1]
	emit := l.emit
	if emit == nil {
		l.pending = append(l.pending, lines...)
	}
	l.mu.Unlock()

	if emit != nil {
		for _, line := range lines {
			if line != "" {
				emit(line)
			}
		}
	}
	return len(p), nil
}

// attach starts forwarding to emit and flushes buffered lines.
func (l *logSink) attach(emit func(string)) {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.emit = emit
	l.mu.Unlock()
	for _, line := range pending {
		if line != "" {
			emit(line)
		}
	}
}
