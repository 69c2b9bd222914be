package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fwojciec/chatstream"
	bt "github.com/fwojciec/chatstream/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type rootFlags struct {
	server   string
	token    string
	config   string
	logFile  string
	logLevel string
	logTee   bool
	strict   bool
}

func newRootCmd(env config) *cobra.Command {
	var (
		f rootFlags
		a *app
	)
	root := &cobra.Command{
		Use:           "chatstream",
		Short:         "Terminal client for a streaming chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configPath := f.config
			explicit := cmd.Flags().Changed("config")
			if !explicit {
				configPath = filepath.Join(stateDir(), configFileName)
			}
			file, err := loadConfigFile(configPath, explicit)
			if err != nil {
				return err
			}
			cfg := resolveConfig(config{Server: f.server, Token: f.token}, env, file)
			// The TUI owns the terminal; only headless commands log to stderr.
			headless := cmd.HasParent() && cmd.Name() != "chat"
			a, err = newApp(cfg, appOptions{
				logLevel: f.logLevel,
				logFile:  f.logFile,
				console:  f.logTee && headless,
				strict:   f.strict,
			})
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.server, "server", "", "chat server base URL (default "+defaultServer+")")
	pf.StringVar(&f.token, "token", "", "bearer token")
	pf.StringVar(&f.config, "config", "", "config file (default ~/.chatstream/config.json)")
	pf.StringVar(&f.logFile, "log-file", filepath.Join(stateDir(), logFileName), "log file; empty disables logging")
	pf.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.BoolVar(&f.logTee, "log-stderr", false, "also log to stderr (not in the TUI)")
	pf.BoolVar(&f.strict, "strict", false, "fail streams that end without a completion event")

	appFn := func() *app { return a }
	root.AddCommand(
		&cobra.Command{
			Use:   "chat",
			Short: "Open the chat TUI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runChat(cmd.Context(), appFn())
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List chats",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runList(cmd.Context(), appFn(), cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "new",
			Short: "Create a chat and print its id",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runNew(cmd.Context(), appFn(), cmd.OutOrStdout())
			},
		},
		newSendCmd(appFn),
	)
	return root
}

func newSendCmd(appFn func() *app) *cobra.Command {
	var chats []string
	cmd := &cobra.Command{
		Use:   "send --chat ID [--chat ID...] PROMPT",
		Short: "Send a prompt and stream the reply to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), appFn(), cmd.OutOrStdout(), chats, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringArrayVar(&chats, "chat", nil, "chat id; repeat to send to several chats at once")
	_ = cmd.MarkFlagRequired("chat")
	return cmd
}

func runChat(ctx context.Context, a *app) error {
	m := bt.New(a.store, a.client, a.sender, chatstream.DefaultTheme())
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

func runList(ctx context.Context, a *app, out io.Writer) error {
	convs, err := a.client.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tMESSAGES")
	for _, c := range convs {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Title, len(c.Messages))
	}
	return tw.Flush()
}

func runNew(ctx context.Context, a *app, out io.Writer) error {
	conv, err := a.client.CreateChat(ctx)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	_, err = fmt.Fprintln(out, conv.ID)
	return err
}

// runSend streams prompt into every chat concurrently. With one chat the
// reply is written as it arrives; with several, complete lines are written
// prefixed by their chat id.
func runSend(ctx context.Context, a *app, out io.Writer, chatIDs []string, prompt string) error {
	convs, err := a.client.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	a.store.Load(convs)

	var mu sync.Mutex
	var g errgroup.Group
	for _, id := range chatIDs {
		w := &lineWriter{mu: &mu, out: out}
		if len(chatIDs) > 1 {
			w.prefix = "[" + id + "] "
		}
		g.Go(func() error {
			return sendOne(ctx, a, w, id, prompt)
		})
	}
	return g.Wait()
}

func sendOne(ctx context.Context, a *app, w *lineWriter, chatID, prompt string) error {
	ex, err := a.sender.Send(ctx, chatID, prompt,
		chatstream.WithOnDelta(func(_ chatstream.Exchange, text string) { w.write(text) }),
	)
	if err != nil {
		return fmt.Errorf("chat %s: %w", chatID, err)
	}
	<-ex.Handle.Done()
	w.flush()
	if err := w.error(); err != nil {
		return fmt.Errorf("chat %s: write output: %w", chatID, err)
	}

	res := ex.Handle.Result()
	switch res.Outcome {
	case chatstream.OutcomeFailed:
		return fmt.Errorf("chat %s: %w", chatID, res.Err)
	case chatstream.OutcomeCancelled:
		return fmt.Errorf("chat %s: %w", chatID, context.Canceled)
	}
	return nil
}

// lineWriter serialises output from concurrent streams. Without a prefix
// text is written through; with one, only whole lines are written.
type lineWriter struct {
	mu      *sync.Mutex
	out     io.Writer
	prefix  string
	pending strings.Builder
	wrote   bool
	err     error
}

func (w *lineWriter) write(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wrote = true
	if w.prefix == "" {
		w.emit(text)
		w.pending.Reset()
		w.pending.WriteString(text[strings.LastIndexByte(text, '\n')+1:])
		return
	}
	w.pending.WriteString(text)
	buffered := w.pending.String()
	i := strings.LastIndexByte(buffered, '\n')
	if i < 0 {
		return
	}
	for _, line := range strings.Split(buffered[:i], "\n") {
		w.emit(w.prefix + line + "\n")
	}
	w.pending.Reset()
	w.pending.WriteString(buffered[i+1:])
}

// flush ends the current line.
func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.wrote || w.pending.Len() == 0 {
		return
	}
	if w.prefix == "" {
		w.emit("\n")
	} else {
		w.emit(w.prefix + w.pending.String() + "\n")
	}
	w.pending.Reset()
}

// emit writes s unless an earlier write failed. Callers hold mu.
func (w *lineWriter) emit(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

// error returns the first write error.
func (w *lineWriter) error() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
