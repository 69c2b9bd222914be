// Command chatstream is a terminal client for a streaming chat server.
//
// Usage:
//
//	chatstream [flags]                     open the chat TUI
//	chatstream list                        list chats
//	chatstream new                         create a chat and print its id
//	chatstream send --chat ID PROMPT       stream a reply to stdout
//
// Connection settings come from flags, then CHATSTREAM_SERVER and
// CHATSTREAM_TOKEN, then ~/.chatstream/config.json.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Env vars are read here and passed down as values.
	env := config{
		Server: os.Getenv(envServer),
		Token:  os.Getenv(envToken),
	}
	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chatstream: %v\n", err)
		stop()
		os.Exit(1)
	}
}
