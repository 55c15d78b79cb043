package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Sternrassler/paynow-client/pkg/pagination"
	"github.com/Sternrassler/paynow-client/pkg/payment"
	"github.com/Sternrassler/paynow-client/pkg/view"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func paymentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"pay"},
		Short:   "List, inspect, create and export payments",
	}

	cmd.AddCommand(paymentsListCmd(a))
	cmd.AddCommand(paymentsGetCmd(a))
	cmd.AddCommand(paymentsCreateCmd(a))
	cmd.AddCommand(paymentsExportCmd(a))

	return cmd
}

func paymentsListCmd(a *app) *cobra.Command {
	var (
		q      listingQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := q.validate(); err != nil {
				return err
			}

			v, err := loadListing(cmd.Context(), a.client, q)

			out := cmd.OutOrStdout()
			if asJSON {
				if encErr := writeJSON(out, v); encErr != nil {
					return encErr
				}
			} else if renderErr := view.Render(out, v, time.Now()); renderErr != nil {
				return renderErr
			}

			if err != nil {
				return userError(err, view.LoadErrorFallback)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&q.Page, "page", 1, "Page number, starting at 1")
	flags.IntVar(&q.Size, "size", pagination.DefaultItemsPerPage, fmt.Sprintf("Page size, one of %v", pagination.PageSizes))
	flags.StringVar(&q.Search, "search", "", "Match name, ID or card number")
	flags.StringVar(&q.Status, "status", "All", "Status filter: All, PROCESSED, PENDING, FAILED")
	flags.StringVar(&q.Sort, "sort", "date-desc", "Sort: date-desc, date-asc, name-asc, name-desc")
	flags.BoolVar(&asJSON, "json", false, "Print the composed view as JSON")

	return cmd
}

func paymentsGetCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a single payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetPayment(cmd.Context(), args[0])
			if err != nil {
				return userError(err, "Failed to load payment.")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, p)
			}
			return printPayment(out, *p, time.Now())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the payment as JSON")
	return cmd
}

func paymentsCreateCmd(a *app) *cobra.Command {
	var (
		req    payment.CreatePaymentRequest
		amount string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			req.Amount = amt

			if err := req.Validate(); err != nil {
				return err
			}

			p, err := a.client.CreatePayment(cmd.Context(), req)
			if err != nil {
				return userError(err, "Failed to create payment.")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created payment %s (%s)\n", p.ID, p.Status)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.FirstName, "first", "", "Payer first name")
	flags.StringVar(&req.LastName, "last", "", "Payer last name")
	flags.StringVar(&req.ZipCode, "zip", "", "Payer zip code")
	flags.StringVar(&req.CardNumber, "card", "", "Card number")
	flags.StringVar(&amount, "amount", "", "Amount, e.g. 12.50")
	for _, name := range []string{"first", "last", "zip", "card", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func paymentsExportCmd(a *app) *cobra.Command {
	cfg := pagination.DefaultBatchConfig()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch every page concurrently and print all payments as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			bf := pagination.NewBatchFetcher(a.client, cfg)

			records, err := bf.FetchAll(cmd.Context())
			if records == nil && err != nil {
				return userError(err, view.LoadErrorFallback)
			}

			if encErr := writeJSON(cmd.OutOrStdout(), records); encErr != nil {
				return encErr
			}

			// Partial results were still printed.
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.PageSize, "size", cfg.PageSize, "Records per gateway request")
	flags.IntVar(&cfg.MaxConcurrency, "concurrency", cfg.MaxConcurrency, "Parallel page requests")
	flags.DurationVar(&cfg.Timeout, "page-timeout", cfg.Timeout, "Timeout per page request")

	return cmd
}

func printPayment(w io.Writer, p payment.Payment, now time.Time) error {
	row := view.NewRow(p)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", row.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", row.Name)
	fmt.Fprintf(tw, "Status:\t%s\n", row.Status)
	fmt.Fprintf(tw, "Amount:\t%s\n", row.Amount)
	fmt.Fprintf(tw, "Card:\t%s\n", row.Card)
	fmt.Fprintf(tw, "Zip code:\t%s\n", row.ZipCode)
	fmt.Fprintf(tw, "Created:\t%s (%s)\n", row.Created, humanize.RelTime(p.CreatedAt, now, "ago", "from now"))
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
