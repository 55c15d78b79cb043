package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func webhooksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"hooks"},
		Short:   "Manage payment notification webhooks",
	}

	cmd.AddCommand(webhooksListCmd(a))
	cmd.AddCommand(webhooksRegisterCmd(a))
	cmd.AddCommand(webhooksDeleteCmd(a))
	cmd.AddCommand(webhooksToggleCmd(a, "activate", true))
	cmd.AddCommand(webhooksToggleCmd(a, "deactivate", false))

	return cmd
}

func webhooksListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered webhooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			hooks, err := a.client.ListWebhooks(cmd.Context())
			if err != nil {
				return userError(err, "Failed to load webhooks.")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, hooks)
			}
			if len(hooks) == 0 {
				fmt.Fprintln(out, "No webhooks registered")
				return nil
			}
			return printWebhooks(out, hooks, time.Now())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print webhooks as JSON")
	return cmd
}

func webhooksRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register URL",
		Short: "Register a new webhook endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook, err := a.client.RegisterWebhook(cmd.Context(), args[0])
			if err != nil {
				return userError(err, "Failed to register webhook.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered webhook %s for %s\n", hook.ID, hook.EndpointURL)
			return nil
		},
	}
}

func webhooksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteWebhook(cmd.Context(), args[0]); err != nil {
				return userError(err, "Failed to delete webhook.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted webhook %s\n", args[0])
			return nil
		},
	}
}

func webhooksToggleCmd(a *app, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: fmt.Sprintf("Mark a webhook %s", activeLabel(active)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				hook *payment.Webhook
				err  error
			)
			if active {
				hook, err = a.client.ActivateWebhook(ctx, args[0])
			} else {
				hook, err = a.client.DeactivateWebhook(ctx, args[0])
			}
			if err != nil {
				return userError(err, "Failed to update webhook.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook %s is now %s\n", hook.ID, activeLabel(hook.Active))
			return nil
		},
	}
}

func printWebhooks(w io.Writer, hooks []payment.Webhook, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tENDPOINT\tSTATE\tUPDATED")
	for _, h := range hooks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			h.ID, h.EndpointURL, activeLabel(h.Active),
			humanize.RelTime(h.UpdatedAt, now, "ago", "from now"))
	}
	return tw.Flush()
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
