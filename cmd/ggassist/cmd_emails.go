package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/backend"
	"github.com/locoxsoco/GG-Assist/internal/links"
	"github.com/locoxsoco/GG-Assist/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newEmailsCommand() *cobra.Command {
	var backendURL string
	var filterDate string
	var showLinks bool

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List the emails for a filter date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(".")
			if err != nil {
				return err
			}
			if backendURL == "" {
				backendURL = cfg.Backend.URL
			}
			date := resolveFilterDate(cfg, filterDate)

			client := backend.NewHTTPClient(backendURL,
				backend.WithHTTPClient(&http.Client{
					Timeout: time.Duration(cfg.Backend.Timeout) * time.Second,
				}))

			emails, err := client.ListEmails(cmd.Context(), date)
			if err != nil {
				return &BackendFailureError{Message: err.Error()}
			}

			if len(emails) == 0 {
				fmt.Printf("No emails on %s.\n", date)
				return nil
			}

			fmt.Printf("%d email(s) on %s:\n\n", len(emails), date)
			for _, e := range emails {
				fmt.Printf("  %s  %s\n", e.InternalDate.Time().Format("15:04"), e.Snippet)
				if showLinks {
					fmt.Printf("         %s\n", links.GmailMessage(e.ID))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend", "", "Backend base URL (default from .ggassist.yaml)")
	cmd.Flags().StringVar(&filterDate, "date", "", "Email filter date, YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&showLinks, "links", false, "Show Gmail deep links")

	return cmd
}
