package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/locoxsoco/GG-Assist/internal/projectconfig"
	"github.com/locoxsoco/GG-Assist/internal/webserver"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var backendURL string
	var filterDate string
	var port int
	var noBrowser bool
	var sessionLog bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API for the desktop UI",
		Long: `Start the local HTTP server the desktop UI talks to.

The server exposes the conversation transcript, the email context, and the
message dispatch endpoint. It binds to loopback only.`,
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Warm the email context so the UI has data on first load.
			date := resolveFilterDate(cfg, filterDate)
			if err := sess.RefreshEmails(ctx, date); err != nil {
				fmt.Printf("⚠ could not fetch emails for %s: %v\n", date, err)
			}

			if port == 0 {
				port = cfg.Server.Port
			}
			if !noBrowser && cfg.Server.NoBrowser != nil {
				noBrowser = *cfg.Server.NoBrowser
			}

			srv, err := webserver.New(webserver.Config{
				Port:      port,
				NoBrowser: noBrowser,
				Session:   sess,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "Backend base URL (default from .ggassist.yaml)")
	cmd.Flags().StringVar(&filterDate, "date", "", "Email filter date, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from .ggassist.yaml)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open a browser window")
	cmd.Flags().BoolVar(&sessionLog, "session-log", false, "Record an NDJSON session event log")

	return cmd
}
