package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flapsim/internal/storage"
)

var (
	flagHistoryLimit int
	flagBatchID      int64
	flagClear        bool
)

var historyCmd = &cobra.Command{
	Use:   "history [policy]",
	Short: "Show stored batch results",
	Long: `Display the most recent stored batches, optionally for one policy, followed
by per-policy statistics. With --batch, list the episodes of one batch instead.

Examples:
  flapsim history
  flapsim history circuit --limit 5
  flapsim history --batch 12
  flapsim history digital --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Number of batches to show")
	historyCmd.Flags().Int64Var(&flagBatchID, "batch", 0, "Show the episodes of this batch")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete stored batches")
}

func runHistory(_ *cobra.Command, args []string) error {
	policyName := ""
	if len(args) > 0 {
		policyName = args[0]
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearBatches(policyName); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	}

	if flagBatchID != 0 {
		return showEpisodes(store, flagBatchID)
	}

	batches, err := store.Batches(policyName, flagHistoryLimit)
	if err != nil {
		return err
	}

	title := "Batch history"
	if policyName != "" {
		title += " - " + policyName
	}
	printHeading(title)

	if len(batches) == 0 {
		fmt.Println("No batches recorded yet.")
		fmt.Println()
		fmt.Println("Run 'flapsim batch --weights w0,w1,w2,bias' to record one.")
		return nil
	}

	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Policy", Width: 8},
		{Title: "Params", Width: 30},
		{Title: "Eps", Width: 5},
		{Title: "Mean", Width: 10},
		{Title: "Best", Width: 8},
		{Title: "Failed", Width: 6},
		{Title: "Date", Width: 16},
	}
	rows := make([]table.Row, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, table.Row{
			fmt.Sprint(b.ID),
			b.Policy,
			fmt.Sprintf("%.3g %.3g %.3g %.3g", b.Params[0], b.Params[1], b.Params[2], b.Params[3]),
			fmt.Sprint(b.Episodes),
			fmt.Sprintf("%.2f", b.Mean),
			fmt.Sprint(b.Best),
			fmt.Sprint(b.Failed),
			b.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	printTable(columns, rows)

	stats, err := store.PolicyStats()
	if err != nil {
		return err
	}
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	printHeading("Per-policy statistics")
	for _, name := range names {
		s := stats[name]
		fmt.Printf("  %-8s  batches %-4d  episodes %-6d  best mean %-8.2f  avg mean %-8.2f  best score %d\n",
			name, s.Batches, s.Episodes, s.BestMean, s.AvgMean, s.BestScore)
	}
	return nil
}

func showEpisodes(store *storage.Store, batchID int64) error {
	episodes, err := store.EpisodeScores(batchID)
	if err != nil {
		return err
	}

	printHeading(fmt.Sprintf("Batch %d episodes", batchID))
	if len(episodes) == 0 {
		fmt.Println("No episodes recorded for this batch.")
		return nil
	}

	columns := []table.Column{
		{Title: "Index", Width: 6},
		{Title: "Seed", Width: 20},
		{Title: "Score", Width: 8},
		{Title: "Frames", Width: 8},
		{Title: "Error", Width: 40},
	}
	rows := make([]table.Row, 0, len(episodes))
	for _, e := range episodes {
		rows = append(rows, table.Row{
			fmt.Sprint(e.Index),
			fmt.Sprint(e.Seed),
			fmt.Sprint(e.Score),
			fmt.Sprint(e.Frames),
			e.Error,
		})
	}
	printTable(columns, rows)
	return nil
}

// printTable renders rows as a static table on a terminal, or as
// tab-separated lines otherwise.
func printTable(columns []table.Column, rows []table.Row) {
	if !styled() {
		for i, c := range columns {
			if i > 0 {
				fmt.Print("\t")
			}
			fmt.Print(c.Title)
		}
		fmt.Println()
		for _, r := range rows {
			for i, cell := range r {
				if i > 0 {
					fmt.Print("\t")
				}
				fmt.Print(cell)
			}
			fmt.Println()
		}
		return
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// Nothing is focused in a static table
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	t.SetHeight(len(rows) + 2) // Header and its border

	fmt.Println(t.View())
}
