package main

import (
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/statshaus/internal/activity"
	"github.com/tinytelemetry/statshaus/internal/httpserver"
	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/poller"
	"github.com/tinytelemetry/statshaus/internal/statsapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the stats endpoint and serve the HTTP API",
	Long: `Runs the poller headless and exposes the sorted activity table and the
pause, resume, refresh, sort and dismiss-error controls over HTTP.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.Duration("tick-interval", model.DefaultTickInterval, "heartbeat period")
	f.Int("fetch-threshold", model.DefaultFetchThreshold, "ticks between fetches")
	f.Int("resume-threshold", model.DefaultResumeThreshold, "ticks between fetches after a resume")
	f.String("api-addr", model.DefaultAPIAddr, "HTTP API listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Missing credentials stop us here, before anything is scheduled.
	client, err := statsapi.NewClient(cfg.statsAPI())
	if err != nil {
		return err
	}

	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	sorter := activity.NewSortEngine()
	svc := poller.NewService(client, poller.ServiceConfig{
		TickInterval:    cfg.TickInterval,
		FetchThreshold:  cfg.FetchThreshold,
		ResumeThreshold: cfg.ResumeThreshold,
		InitialFetch:    true,
	})
	svc.Subscribe(func(e poller.Event) {
		switch e.Kind {
		case poller.EventSnapshot:
			sorter.SetRecords(e.Snapshot.Records)
			log.Printf("serve: snapshot with %d records", len(e.Snapshot.Records))
		case poller.EventError:
			log.Printf("serve: polling frozen until the error is dismissed: %s", e.State.Err.Message)
		case poller.EventPaused, poller.EventResumed, poller.EventErrorCleared:
			log.Printf("serve: %s", e.Kind)
		}
	})

	api := httpserver.NewServer(cfg.APIAddr, svc, sorter)
	if err := api.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	if err := svc.Start(); err != nil {
		_ = api.Stop()
		return fmt.Errorf("failed to start poller: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printStartupBanner(cmd.OutOrStdout(), cfg, client.Endpoint(), api.Addr())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		svc.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := api.Stop(); err != nil {
			return fmt.Errorf("stopping API server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("serve: shutdown error: %v", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nShut down.")
	return nil
}

func printStartupBanner(w io.Writer, cfg appConfig, endpoint, apiAddr string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╔╦╗╔═╗╔╦╗╔═╗╦ ╦╔═╗╦ ╦╔═╗
    ╚═╗ ║ ╠═╣ ║ ╚═╗╠═╣╠═╣║ ║╚═╗
    ╚═╝ ╩ ╩ ╩ ╩ ╚═╝╩ ╩╩ ╩╚═╝╚═╝`)

	separator := dim.Render("    ─────────────────────────────────")
	period := fetchPeriodText(cfg)

	lines := []string{
		"",
		logo,
		"    " + dim.Render("v"+version),
		"",
		separator,
		"",
		bold.Render("    Polling"),
		"",
		fmt.Sprintf("    %s  Endpoint       %s", check, cyan.Render(endpoint)),
		fmt.Sprintf("    %s  Interval       %s", check, cyan.Render(period)),
		"",
		bold.Render("    Gateway"),
		"",
		fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+apiAddr+"/api/activity")),
		"",
		separator,
		"",
		dim.Render("    Logs: ~/.local/state/statshaus/statshaus.log"),
	}
	if cfg.ConfigPath != "" {
		lines = append(lines, dim.Render("    Config: "+cfg.ConfigPath))
	}
	lines = append(lines, dim.Render("    Press Ctrl+C to stop"), "")

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// fetchPeriodText describes the steady-state fetch cadence: the countdown
// runs from 0 to the threshold and fetches on the next tick.
func fetchPeriodText(cfg appConfig) string {
	ticks := cfg.FetchThreshold + 1
	return fmt.Sprintf("every %s (%d x %s ticks)", time.Duration(ticks)*cfg.TickInterval, ticks, cfg.TickInterval)
}
