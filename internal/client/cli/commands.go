package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/oriontask/internal/client/config"
	"github.com/dmitrijs2005/oriontask/internal/filex"
	"github.com/dmitrijs2005/oriontask/internal/logging"
	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand returns the oriontask command. Without a subcommand it
// starts the interactive shell.
func NewRootCommand(bi BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oriontask",
		Short:         "Personal task manager: dharmas, tasks and a five-slot focus list.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				a.Run(ctx)
				return nil
			})
		},
	}
	config.BindFlags(cmd.PersistentFlags())

	addAgora(cmd)
	addVersion(cmd, bi)
	return cmd
}

func addAgora(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "agora",
		Short: "Fill the focus list from NEXT and print it.",
		Example: `
oriontask agora
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *App) error {
				a.Start(ctx)
				return a.Agora(ctx)
			})
		},
	}
	topLevel.AddCommand(cmd)
}

func addVersion(topLevel *cobra.Command, bi BuildInfo) {
	shortened := false
	output := "json"
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get oriontask version.",
		Example: `
oriontask version
`,
		Run: func(cmd *cobra.Command, _ []string) {
			resp := goversion.FuncWithOutput(shortened, bi.Version, bi.Commit, bi.Date, output)
			fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format. One of 'yaml' or 'json'.")

	topLevel.AddCommand(cmd)
}

// withApp loads the configuration, opens the log file and the App, and
// runs fn. Logs go to a file in the data directory so they do not mix with
// the interactive output.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if err := filex.EnsureDir(cfg.DataDir); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "oriontask.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	log := logging.New(logFile, cfg.LogLevel)
	a, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error(ctx, "error closing database", "error", err)
		}
	}()

	return fn(ctx, a)
}
