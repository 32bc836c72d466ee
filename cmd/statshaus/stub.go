package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/statshaus/internal/model"
	"github.com/tinytelemetry/statshaus/internal/stubserver"
)

const defaultStubPassword = "demo"

var stubSeed uint64

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a fake stats endpoint for local development",
	Long: `Serves generated "last seen" activity at /stats/data.json behind basic
auth. Point the dashboard at it with --endpoint http://<stub-addr>/stats/data.json
and the same username and password.`,
	Args: cobra.NoArgs,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().String("stub-addr", model.DefaultStubAddr, "listen address")
	stubCmd.Flags().Uint64Var(&stubSeed, "seed", 1, "seed for generated activity")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Username == "" {
		cfg.Username = "demo"
	}
	if cfg.Password == "" {
		cfg.Password = defaultStubPassword
	}

	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	srv := stubserver.NewServer(stubserver.Config{
		Addr:     cfg.StubAddr,
		Username: cfg.Username,
		Password: cfg.Password,
		Seed:     stubSeed,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Serving http://%s%s (user %q)\n", srv.Addr(), stubserver.DataPath, cfg.Username)
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := srv.Stop(); err != nil {
		log.Printf("stub: shutdown: %v", err)
		return err
	}
	log.Printf("stub: served %d requests", srv.Requests())
	return nil
}
