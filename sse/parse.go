package sse

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/chatstream"
)

// payload is the JSON object carried by a data line.
type payload struct {
	Delta string `json:"delta"`
}

// Classify maps one logical line to an event. Rules, in order: a blank
// line is ignored; the exact completion line is EventDone; a data line whose
// JSON payload has a non-empty string "delta" is EventDelta; everything else,
// malformed JSON included, is ignored. Classify never fails.
func Classify(line string) chatstream.Event {
	line = strings.TrimSpace(line)
	if line == "" {
		return chatstream.EventIgnored{}
	}
	if line == doneLine {
		return chatstream.EventDone{}
	}
	rest, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return chatstream.EventIgnored{}
	}
	text, ok := parseDelta(strings.TrimLeft(rest, " \t"))
	if !ok {
		return chatstream.EventIgnored{}
	}
	return chatstream.EventDelta{Text: text}
}

func parseDelta(data string) (string, bool) {
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return "", false
	}
	if p.Delta == "" {
		return "", false
	}
	return p.Delta, true
}
