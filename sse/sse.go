// Package sse decodes the line-oriented response stream of the chat server.
//
// The wire format is a simplified server-sent-event framing: every logical
// unit is one newline-terminated line. A data line has the form
//
//	data: {"delta":"..."}
//
// and the completion signal is the exact line
//
//	event: done
//
// Everything else, blank keep-alive lines included, is ignored. A [Decoder]
// turns arbitrarily split byte chunks into lines; [Classify] turns each line
// into a [chatstream.Event].
package sse

const (
	lineTerminator = '\n'
	dataPrefix     = "data:"
	doneLine       = "event: done"
)
