package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/handler"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
)

func parseCmd(opts *rootOptions) *cobra.Command {
	var categoryID string

	cmd := &cobra.Command{
		Use:   "parse <text...>",
		Short: "Parse one expense sentence",
		Example: `  nlparse parse rm 12 grab today
  nlparse parse --now 2025-12-15T14:30:00+08:00 "Paid RM120 shopee 1/12 headphones"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService(cmd, 1)
			if err != nil {
				return err
			}

			parsed, err := svc.Parse(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			msg := handler.ToParsedExpense(parsed)
			msg.ReadyToSave = parser.IsReadyToSave(parsed, categoryID)

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), msg)
			}
			return writeParsed(cmd.OutOrStdout(), parsed, msg.ReadyToSave)
		},
	}

	cmd.Flags().StringVar(&categoryID, "category-id", "", "category chosen by the user, counted when checking readiness")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeParsed(w io.Writer, p parser.ParsedExpense, ready bool) error {
	date := p.Date.Format("2006-01-02 (Mon)")
	if !p.DateExplicit {
		date += " assumed"
	}
	category := orDash(p.CategoryName)
	if p.CategoryName != "" {
		category = fmt.Sprintf("%s (%.2f)", p.CategoryName, p.CategoryConfidence)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Amount:\t%s\n", parser.FormatAmount(p.AmountMinor))
	fmt.Fprintf(tw, "Merchant:\t%s\n", orDash(p.Merchant))
	fmt.Fprintf(tw, "Date:\t%s\n", date)
	fmt.Fprintf(tw, "Category:\t%s\n", category)
	fmt.Fprintf(tw, "Notes:\t%s\n", orDash(p.Notes))
	fmt.Fprintf(tw, "Confidence:\t%.2f\n", p.Confidence)
	fmt.Fprintf(tw, "Ready:\t%s\n", yesNo(ready))
	fmt.Fprintf(tw, "Warnings:\t%s\n", orDash(strings.Join(p.Warnings, "; ")))
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
