package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/server"
	"github.com/Cris19111/Coordinartes-Animal-Classification/internal/store"
)

// Version is reported by the serve command's health endpoint.
const Version = "0.1.0"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	DBPath string
	Addr   string
	UIDir  string
}

// NewServeCommand creates the serve command: the dataset API and viewer.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset API and the map viewer",
		Long: `Serve the map viewer and its dataset API over HTTP. The viewer renders
the latest classification run; /api/map.json?run=<id> selects an earlier
one.

Example:
  avesmap serve --db aves.db
  avesmap serve --db aves.db --addr :9000 --ui ./web`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to the SQLite database (required)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&opts.UIDir, "ui", "", "serve the viewer from this directory instead of the embedded files")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	slog.Info("opening database", "path", opts.DBPath)
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	srv := server.New(st, slog.Default(), server.Options{
		UIDir:   opts.UIDir,
		Version: Version,
	})

	// Use the command's context if set (for testing), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", opts.Addr)
	if err := srv.Run(ctx, opts.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
