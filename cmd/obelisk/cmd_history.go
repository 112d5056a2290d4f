package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"obelisk/internal/config"
	"obelisk/internal/format"
	"obelisk/internal/store"
)

var (
	flagHistoryDB    string
	flagHistoryLimit int
	flagHistoryShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List persisted executions from the history store",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryDB, "db", "", "SQLite path for execution history (overrides config)")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Maximum executions to list")
	historyCmd.Flags().StringVar(&flagHistoryShow, "show", "", "Print the full report for one execution ID")
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	path := cfg.Store.Path
	if flagHistoryDB != "" {
		path = flagHistoryDB
	}
	if path == "" {
		return fmt.Errorf("no history store configured (set store.path or pass --db)")
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	if flagHistoryShow != "" {
		rec, err := st.Get(flagHistoryShow)
		if err != nil {
			return err
		}
		fmt.Printf("Deployment: %s\nRecorded:   %s\n\n", rec.DeploymentID, rec.CreatedAt.Format(time.RFC3339))
		fmt.Print(format.Report(format.ASCII, rec.Result))
		return nil
	}

	summaries, err := st.List(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No executions recorded.")
		return nil
	}

	tb := format.NewTable(format.ASCII)
	tb.Header("Execution", "Deployment", "Recorded", "Top hypothesis", "Confidence", "Review")
	tb.Columns(
		format.ColumnConfig{Number: 4, MaxWidth: 40},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)
	for _, s := range summaries {
		review := ""
		if s.ReviewFlagged {
			review = "yes"
		}
		tb.Row(s.ExecutionID, s.DeploymentID, s.CreatedAt.Format("2006-01-02 15:04:05"),
			s.TopLabel, format.FmtConfidence(s.TopConfidence), review)
	}
	fmt.Println(tb.String())
	return nil
}
