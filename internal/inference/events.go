package inference

import (
	"bufio"
	"strings"
)

// eventKind tags one entry of the pseudo-event-stream the poll endpoint
// emits as plain text lines.
type eventKind string

const (
	eventGenerating eventKind = "generating"
	eventComplete   eventKind = "complete"
	eventError      eventKind = "error"
	eventUnknown    eventKind = "unknown"
)

// pollEvent is one "event:" line paired with the "data:" line that follows it.
type pollEvent struct {
	kind eventKind
	data string
}

// parseEventStream scans a poll response body line by line and pairs each
// "event: <type>" line with the next "data: <payload>" line. Order is
// preserved; lines that match neither prefix are skipped. An event with no
// data line before the next event (or EOF) is emitted with empty data.
func parseEventStream(body string) []pollEvent {
	var events []pollEvent
	var pending *pollEvent

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "event:"):
			if pending != nil {
				events = append(events, *pending)
			}
			pending = &pollEvent{kind: classifyEvent(strings.TrimSpace(strings.TrimPrefix(line, "event:")))}
		case strings.HasPrefix(line, "data:"):
			if pending == nil {
				continue // data with no preceding event line is noise
			}
			pending.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			events = append(events, *pending)
			pending = nil
		}
	}
	if pending != nil {
		events = append(events, *pending)
	}
	return events
}

func classifyEvent(name string) eventKind {
	switch strings.ToLower(name) {
	case "generating":
		return eventGenerating
	case "complete":
		return eventComplete
	case "error":
		return eventError
	default:
		return eventUnknown
	}
}
