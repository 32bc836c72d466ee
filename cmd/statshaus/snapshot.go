package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/statshaus/internal/activity"
	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/statsapi"
)

var (
	snapshotFormat string
	snapshotSort   string
	snapshotDir    string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the activity table once and print it",
	Args:  cobra.NoArgs,
	RunE:  runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "o", "table", "output format: table, json or yaml")
	snapshotCmd.Flags().StringVar(&snapshotSort, "sort", string(model.DefaultSortField), "sort field: name or timestamp")
	snapshotCmd.Flags().StringVar(&snapshotDir, "dir", string(model.DefaultSortDirection), "sort direction: asc or desc")
	rootCmd.AddCommand(snapshotCmd)
}

// snapshotOutput is the machine-readable form of one snapshot.
type snapshotOutput struct {
	FetchedAt int64                  `json:"fetched_at" yaml:"fetched_at"`
	Sort      model.SortState        `json:"sort" yaml:"sort"`
	Records   []model.ActivityRecord `json:"records" yaml:"records"`
}

func parseSortFlags(field, dir string) (model.SortState, error) {
	f, ok := model.ParseSortField(field)
	if !ok {
		return model.SortState{}, fmt.Errorf("invalid --sort %q: must be name or timestamp", field)
	}
	switch d := model.SortDirection(dir); d {
	case model.Ascending, model.Descending:
		return model.SortState{Field: f, Direction: d}, nil
	}
	return model.SortState{}, fmt.Errorf("invalid --dir %q: must be asc or desc", dir)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	state, err := parseSortFlags(snapshotSort, snapshotDir)
	if err != nil {
		return err
	}
	switch snapshotFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("invalid --format %q: must be table, json or yaml", snapshotFormat)
	}

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	client, err := statsapi.NewClient(cfg.statsAPI())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
	defer cancel()

	snap, err := client.FetchSnapshot(ctx)
	if err != nil {
		return err
	}

	out := snapshotOutput{
		FetchedAt: snap.FetchedAt,
		Sort:      state,
		Records:   activity.Apply(snap.Records, state),
	}
	if out.Records == nil {
		out.Records = []model.ActivityRecord{}
	}

	w := cmd.OutOrStdout()
	switch snapshotFormat {
	case "json":
		return writeSnapshotJSON(w, out)
	case "yaml":
		return writeSnapshotYAML(w, out)
	default:
		return writeSnapshotTable(w, out)
	}
}

func writeSnapshotJSON(w io.Writer, out snapshotOutput) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeSnapshotYAML(w io.Writer, out snapshotOutput) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeSnapshotTable(w io.Writer, out snapshotOutput) error {
	now := time.Unix(out.FetchedAt, 0)

	rows := make([][]string, 0, len(out.Records))
	for _, r := range out.Records {
		rows = append(rows, []string{r.Name, humanize.RelTime(r.LastSeen(), now, "ago", "from now"), r.Stream})
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("USER", "LAST SEEN", "STREAM").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Ordering by: %s (%s), %s\n", out.Sort.Field, out.Sort.Direction,
		english.Plural(len(out.Records), "user", "users"))
	return err
}
