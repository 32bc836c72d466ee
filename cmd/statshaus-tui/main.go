package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/statshaus/internal/statsapi"
	"github.com/tinytelemetry/statshaus/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var endpoint string
	var username string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/statshaus/config.yml)")
	flag.StringVar(&endpoint, "endpoint", "", "override the stats endpoint URL")
	flag.StringVar(&username, "username", "", "override the basic auth username (password comes from STATSHAUS_PASSWORD or the config file)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("StatsHaus - Activity Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if username != "" {
		cfg.Username = username
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	// Credentials are checked before the dashboard starts any polling.
	client, err := statsapi.NewClient(cfg.statsAPI())
	if err != nil {
		return err
	}

	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()
	log.Printf("tui: starting against %s", client.Endpoint())

	dashboard := tui.NewDashboardModel(client, tui.Config{
		TickInterval:    cfg.TickInterval,
		FetchThreshold:  cfg.FetchThreshold,
		ResumeThreshold: cfg.ResumeThreshold,
		Endpoint:        client.Endpoint(),
	})
	defer dashboard.Close()
	app := tui.NewApp(dashboard, tui.NewHelpPage(dashboard.Keys()))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// configureRuntimeLogger sends the standard logger to a file so log output
// never draws over the dashboard.
func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "statshaus")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(filepath.Join(logDir, "statshaus-tui.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
