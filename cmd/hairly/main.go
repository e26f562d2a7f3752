package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hairly/internal/bootstrap"
	"hairly/internal/modules/workflow/dto"
	"hairly/internal/platform/config"
	"hairly/internal/platform/fakeapi"
	"hairly/internal/platform/logging"
)

const version = "0.3.0"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "hairly",
		Short:         "Hair analysis, care plans and progress tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default $HAIRLY_DATA or ~/.hairly)")

	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newStatusCmd(&dataDir))
	root.AddCommand(newAnalyzeCmd(&dataDir))
	root.AddCommand(newPlanCmd(&dataDir))
	root.AddCommand(newTrackCmd(&dataDir))
	root.AddCommand(newSessionCmd(&dataDir))
	root.AddCommand(newMockServerCmd())
	return root
}

func resolveDataDir(flag string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	if v := os.Getenv("HAIRLY_DATA"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hairly"
	}
	return filepath.Join(home, ".hairly")
}

func loadApp(dataDir string, mode bootstrap.Mode) (*bootstrap.App, error) {
	cfg, err := config.New(resolveDataDir(dataDir))
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, mode)
}

// withApp runs fn against a headless app and closes it afterwards.
func withApp(dataDir *string, fn func(ctx context.Context, app *bootstrap.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(*dataDir, bootstrap.ModeCLI)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(cmd.Context(), app, args)
	}
}

func newTUICmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the hairly terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir, bootstrap.ModeTUI)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newStatusCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend health, session and progress",
	}
	cmd.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		snap := app.WorkflowCLI.Status(ctx)
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "backend: %s (%s)\n", snap.Health.Label, snap.Health.CheckedAt.Format(time.RFC3339))
		switch {
		case snap.SessionPresent:
			_, _ = fmt.Fprintf(out, "session: %s\n", snap.SessionID)
		default:
			_, _ = fmt.Fprintln(out, "session: none")
		}
		if snap.SessionDegraded {
			_, _ = fmt.Fprintln(out, "storage: unavailable, session kept in memory only")
		}
		_, _ = fmt.Fprintf(out, "progress: %d%% (%d steps done)\n", snap.ProgressPercent, len(snap.CompletedSteps))
		return nil
	})
	return cmd
}

func newAnalyzeCmd(dataDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload a hair photo for analysis",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, args []string) error {
		out, err := app.WorkflowCLI.Analyze(ctx, args[0])
		if err != nil {
			return err
		}
		snap := app.WorkflowCLI.Snapshot()
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "hair type: %s\nconfidence: %s\nsession: %s\n", out.HairType, out.ConfidenceLabel, snap.SessionID)
		for _, ch := range out.Characteristics {
			_, _ = fmt.Fprintf(w, "  - %s\n", ch)
		}
		return nil
	})
	return cmd
}

func newPlanCmd(dataDir *string) *cobra.Command {
	plan := &cobra.Command{Use: "plan", Short: "Care plan commands"}

	show := &cobra.Command{Use: "show", Short: "Fetch and print the care plan"}
	show.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		out, err := app.WorkflowCLI.ShowPlan(ctx)
		if err != nil {
			return err
		}
		printPlan(show, out)
		return nil
	})

	export := &cobra.Command{Use: "export", Short: "Write the care plan as a markdown note"}
	export.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		out, err := app.WorkflowCLI.ExportPlan(ctx)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(export.OutOrStdout(), "exported %q to %s\n", out.Title, out.Path)
		return nil
	})

	plan.AddCommand(show, export)
	return plan
}

func printPlan(cmd *cobra.Command, p dto.PlanOutput) {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s (%s)\n", p.Title, p.Duration)
	for _, s := range p.Steps {
		mark := " "
		if s.Completed {
			mark = "x"
		}
		_, _ = fmt.Fprintf(w, "[%s] %d. %s (%s)\n    %s\n", mark, s.ID, s.Title, s.Frequency, s.Description)
		if len(s.Products) > 0 {
			_, _ = fmt.Fprintf(w, "    products: %s\n", strings.Join(s.Products, ", "))
		}
	}
}

func newTrackCmd(dataDir *string) *cobra.Command {
	track := &cobra.Command{Use: "track", Short: "Progress journal commands"}

	var notes, photoURL string
	var rating int
	logCmd := &cobra.Command{
		Use:   "log --notes <text> --rating <1-5>",
		Short: "Log a progress entry",
	}
	logCmd.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		receipt, history, err := app.WorkflowCLI.LogProgress(ctx, notes, rating, photoURL)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(logCmd.OutOrStdout(), "logged %s: %s (%d entries)\n", receipt.LogID, receipt.Message, len(history))
		return nil
	})
	logCmd.Flags().StringVar(&notes, "notes", "", "journal notes")
	logCmd.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	logCmd.Flags().StringVar(&photoURL, "photo-url", "", "optional photo url")

	history := &cobra.Command{Use: "history", Short: "List journal entries"}
	history.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		logs, err := app.WorkflowCLI.History(ctx)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			_, _ = fmt.Fprintln(history.OutOrStdout(), "no entries")
			return nil
		}
		for _, l := range logs {
			_, _ = fmt.Fprintf(history.OutOrStdout(), "%s\t%d/5\t%s\n", l.Date, l.Rating, l.Notes)
		}
		return nil
	})

	track.AddCommand(logCmd, history)
	return track
}

func newSessionCmd(dataDir *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Stored analysis session"}

	show := &cobra.Command{Use: "show", Short: "Show the stored session id"}
	show.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		out, err := app.SessionCLI.Show(ctx)
		if err != nil {
			return err
		}
		if !out.Present {
			_, _ = fmt.Fprintln(show.OutOrStdout(), "no session")
		} else {
			_, _ = fmt.Fprintf(show.OutOrStdout(), "session: %s\n", out.SessionID)
		}
		if out.Degraded {
			_, _ = fmt.Fprintln(show.OutOrStdout(), "storage: unavailable")
		}
		return nil
	})

	clearCmd := &cobra.Command{Use: "clear", Short: "Forget the stored session id"}
	clearCmd.RunE = withApp(dataDir, func(ctx context.Context, app *bootstrap.App, _ []string) error {
		if _, err := app.SessionCLI.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(clearCmd.OutOrStdout(), "session cleared")
		return nil
	})

	session.AddCommand(show, clearCmd)
	return session
}

func newMockServerCmd() *cobra.Command {
	var addr, level string
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a local stand-in for the analysis API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.New(os.Stderr, level)
			srv := &http.Server{
				Addr:              addr,
				Handler:           fakeapi.New(logger).Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			logger.Info("mock api listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level")
	return cmd
}
