package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/filswan/swan-tx-runner/pkg/persistence"
	"github.com/filswan/swan-tx-runner/pkg/persistence/journalFactory"
	"github.com/urfave/cli/v2"
)

var historyCommand = &cli.Command{
	Name:  "history",
	Usage: "List journaled submissions, optionally of one run",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "run-id", Usage: "Only show this run"},
	},
	Action: func(c *cli.Context) error {
		l, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		cfg := parseRunnerConfig(c)
		journal, err := journalFactory.NewJournal(cfg.Journal, l)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() { _ = journal.Close() }()

		var records []*persistence.SubmissionRecord
		if runId := c.String("run-id"); runId != "" {
			records, err = journal.ListRunSubmissions(runId)
		} else {
			records, err = journal.ListSubmissions()
		}
		if err != nil {
			return fmt.Errorf("failed to list submissions: %w", err)
		}
		return writeHistory(c.App.Writer, records)
	},
}

func writeHistory(w io.Writer, records []*persistence.SubmissionRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBMITTED\tRUN\tSEQ\tSTEP\tSTATUS\tBLOCK\tTX")
	for _, r := range records {
		block := "-"
		if r.BlockNumber != 0 {
			block = fmt.Sprintf("%d", r.BlockNumber)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			r.SubmittedAt.UTC().Format(time.RFC3339),
			r.RunId,
			r.Sequence,
			r.Step,
			r.Status,
			block,
			r.TxHash,
		)
	}
	return tw.Flush()
}
