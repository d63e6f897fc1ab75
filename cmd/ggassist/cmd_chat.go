package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/links"
	"github.com/locoxsoco/GG-Assist/internal/models"
	"github.com/locoxsoco/GG-Assist/internal/projectconfig"
	"github.com/locoxsoco/GG-Assist/internal/session"
	"github.com/locoxsoco/GG-Assist/internal/spinner"
	"github.com/locoxsoco/GG-Assist/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newChatCommand() *cobra.Command {
	var backendURL string
	var filterDate string
	var sessionLog bool
	var transcriptDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with your inbox",
		Long: `Start an interactive chat session.

The assistant fetches the emails for the active filter date and answers
questions about them. Depending on what you ask, it will summarize every
email, suggest labels, or extract calendar events, reporting progress as it
works through the inbox one email at a time.

Type "quit" or press Ctrl+C to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}

			sess, err := buildSession(cfg, backendURL, filterDate, sessionLog)
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			date := resolveFilterDate(cfg, filterDate)
			return runChat(cmd.Context(), sess, date, transcriptDir, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "Backend base URL (default from .ggassist.yaml)")
	cmd.Flags().StringVar(&filterDate, "date", "", "Email filter date, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&sessionLog, "session-log", false, "Record an NDJSON session event log")
	cmd.Flags().StringVar(&transcriptDir, "save-transcript", "", "Write the conversation JSON to this directory on exit")

	return cmd
}

func runChat(ctx context.Context, sess *session.Session, filterDate, transcriptDir string, in io.Reader, out io.Writer) error {
	ui := &chatUI{out: out}
	sess.OnProgress(ui.onProgress)

	// Fetch the initial email context. A failure is not fatal; the chat
	// starts with whatever context is available.
	stop := spinner.Start(out, fmt.Sprintf("fetching emails for %s", filterDate))
	err := sess.RefreshEmails(ctx, filterDate)
	stop()
	if err != nil {
		fmt.Fprintf(out, "⚠ could not fetch emails: %v\n", err)
	} else {
		fmt.Fprintf(out, "📥 %d email(s) on %s\n", len(sess.Emails()), filterDate)
	}

	fmt.Fprintf(out, "\n%s\n\n", session.WelcomeText)

	for {
		msg, err := readUserInput(in, out)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if msg == "" {
			continue
		}
		if msg == "quit" || msg == "exit" {
			break
		}

		ui.beginThinking()
		entryID, err := sess.Dispatch(ctx, msg)
		ui.endThinking()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			var dispatchErr *backend.DispatchError
			if errors.As(err, &dispatchErr) {
				// The system entry describing the failure is already in the
				// transcript; show it and keep the chat alive.
				printLastEntry(out, sess)
				continue
			}
			return err
		}

		printEntry(out, sess, entryID)
	}

	if transcriptDir != "" {
		path, err := sess.Store.Save(transcriptDir)
		if err != nil {
			return fmt.Errorf("saving transcript: %w", err)
		}
		fmt.Fprintf(out, "Transcript saved to %s\n", path)
	}

	fmt.Fprintln(out, "Bye!")
	return nil
}

// chatUI coordinates the spinner and the live batch progress line.
type chatUI struct {
	out io.Writer

	mu       sync.Mutex
	stopSpin func()
	inBatch  bool
}

func (u *chatUI) beginThinking() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopSpin = spinner.Start(u.out, "thinking")
}

func (u *chatUI) endThinking() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopSpinLocked()
	if u.inBatch {
		fmt.Fprintln(u.out)
		u.inBatch = false
	}
}

func (u *chatUI) stopSpinLocked() {
	if u.stopSpin != nil {
		u.stopSpin()
		u.stopSpin = nil
	}
}

// onProgress swaps the spinner for a live counter once a batch starts.
func (u *chatUI) onProgress(ev workflow.ProgressEvent) {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch ev.EventType {
	case workflow.EventBatchStart:
		u.stopSpinLocked()
		u.inBatch = true
		fmt.Fprintf(u.out, "Working through %d email(s)...\n", ev.TotalItems)
	case workflow.EventItemComplete:
		fmt.Fprintf(u.out, "\r  %d/%d processed", ev.ItemNum, ev.TotalItems)
	case workflow.EventItemSkipped:
		fmt.Fprintf(u.out, "\r  %d/%d processed (skipped %s)", ev.ItemNum, ev.TotalItems, ev.EmailID)
	}
}

func readUserInput(in io.Reader, out io.Writer) (string, error) {
	var msg string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("You").
				Placeholder("Ask about your inbox").
				Value(&msg),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(msg), nil
}

// printEntry renders one transcript entry with its result cards.
//
//nolint:errcheck // display-only writes
func printEntry(out io.Writer, sess *session.Session, id models.EntryID) {
	entry, ok := sess.Store.Get(id)
	if !ok {
		return
	}

	fmt.Fprintf(out, "\nAssistant: %s\n", flattenMarkdown(entry.Text))

	for _, ev := range entry.Payload.Events {
		fmt.Fprintf(out, "  📅 %s\n", ev.Event)
		if t := links.ParseEventTime(ev.DateTime); !t.IsZero() {
			fmt.Fprintf(out, "     add to calendar: %s\n", links.CalendarEvent(ev.Event, t))
		}
		fmt.Fprintf(out, "     email: %s\n", links.GmailMessage(ev.EmailID))
	}
	for _, s := range entry.Payload.Summaries {
		fmt.Fprintf(out, "  ✉ %s\n", flattenMarkdown(s.Summary))
		fmt.Fprintf(out, "     email: %s\n", links.GmailMessage(s.EmailID))
	}
	for _, ls := range entry.Payload.Labels {
		fmt.Fprintf(out, "  🏷 %s → %s\n", truncate(ls.Snippet, 60), strings.Join(ls.Labels, ", "))
	}
	fmt.Fprintln(out)
}

// printLastEntry shows the most recent transcript entry (used after a
// classification failure appended a system message).
func printLastEntry(out io.Writer, sess *session.Session) {
	entries := sess.Transcript()
	if len(entries) == 0 {
		return
	}
	last := entries[len(entries)-1]
	fmt.Fprintf(out, "\n%s\n\n", last.Text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
