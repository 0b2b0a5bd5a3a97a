package main

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/handler"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/parser"
	"github.com/FACorreiaa/smart-expense-tracker/internal/domain/expense/service"
)

func batchCmd(opts *rootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse one expense sentence per line of stdin",
		Example: `  printf 'rm 12 grab today\nlunch at mamak\n' | nlparse batch
  nlparse batch --json < expenses.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.newService(cmd, workers)
			if err != nil {
				return err
			}

			lines, err := readLines(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			results, err := svc.ParseBatch(cmd.Context(), lines)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), handler.ParseExpensesResponse{Results: handler.ToParsedLines(results)})
			}
			return writeBatch(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.GOMAXPROCS(0), "number of parallel parsers")

	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func writeBatch(w io.Writer, results []service.BatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tAMOUNT\tMERCHANT\tDATE\tCATEGORY\tCONFIDENCE\tWARNINGS")
	for _, r := range results {
		p := r.Parsed
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.Line,
			parser.FormatAmount(p.AmountMinor),
			orDash(p.Merchant),
			p.Date.Format("2006-01-02"),
			orDash(p.CategoryName),
			p.Confidence,
			orDash(strings.Join(p.Warnings, "; ")),
		)
	}
	return tw.Flush()
}
