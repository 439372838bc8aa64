// internal/cli/root.go - cobra command tree
package cli

import (
    "context"
    "fmt"
    "os"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"
    "aidiag/internal/clipboard"
    "aidiag/internal/config"
    "aidiag/internal/diag"
    "aidiag/internal/probes"
)

// NewRootCmd wires the command tree. The bare command runs one diagnostic
// pass and prints the report; `serve` runs the long-lived daemon.
func NewRootCmd() *cobra.Command {
    var (
        configFile string
        copyReport bool
        withErrors bool
    )

    root := &cobra.Command{
        Use:   "aidiag",
        Short: "Diagnose the local machine to AI API chain",
        Long: "aidiag checks the chain [local machine] -> [network] -> [AI provider APIs] -> " +
            "[local client process] and reports which link is failing or degraded.",
        RunE: func(cmd *cobra.Command, args []string) error {
            return runOnce(cmd.Context(), configFile, copyReport, withErrors)
        },
        SilenceUsage:  true,
        SilenceErrors: true,
    }

    root.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath(), "configuration file path")
    root.Flags().BoolVar(&copyReport, "copy", false, "copy the rendered report to the clipboard")
    root.Flags().BoolVar(&withErrors, "errors", false, "include the error log section in the report")

    root.AddCommand(newServeCommand(&configFile))
    root.AddCommand(newVersionCommand())
    return root
}

// buildEngine loads config, configures logging and assembles the engine.
func buildEngine(configFile string) (*config.Config, *diag.Engine, error) {
    cfg, err := config.Load(configFile)
    if err != nil {
        return nil, nil, err
    }

    setupLogging(cfg.Logging)

    interval := cfg.EffectiveRefreshInterval()
    if !diag.ValidInterval(interval) {
        return nil, nil, fmt.Errorf("invalid configuration: refresh_interval %s is not one of the presets", interval)
    }

    registry, err := probes.BuildRegistry(cfg.Checks)
    if err != nil {
        return nil, nil, fmt.Errorf("invalid configuration: %w", err)
    }

    engine := diag.NewEngine(registry, cfg.Monitoring.ProbeTimeout, interval)
    return cfg, engine, nil
}

func runOnce(ctx context.Context, configFile string, copyReport, withErrors bool) error {
    cfg, engine, err := buildEngine(configFile)
    if err != nil {
        return err
    }

    sealed := make(chan *diag.DiagnosticPass, 1)
    engine.AddSink(func(pass *diag.DiagnosticPass) {
        sealed <- pass
    })

    engine.RunNow()

    // The orchestrator seals within its run deadline even when every probe
    // hangs; the extra margin covers publication.
    wait := 2*cfg.Monitoring.ProbeTimeout + 5*time.Second

    var pass *diag.DiagnosticPass
    select {
    case pass = <-sealed:
    case <-time.After(wait):
        return fmt.Errorf("diagnostic pass did not complete within %s", wait)
    case <-ctx.Done():
        return ctx.Err()
    }

    report := engine.RenderReport(pass, withErrors)
    fmt.Print(report)

    if copyReport {
        if err := clipboard.WriteText(report); err != nil {
            logrus.WithError(err).Warn("Failed to copy report")
        } else {
            fmt.Fprintln(os.Stderr, "Report copied to clipboard.")
        }
    }

    os.Exit(exitCode(pass.Overall))
    return nil
}

// exitCode follows the monitoring plugin convention.
func exitCode(status diag.Status) int {
    switch status {
    case diag.StatusOK:
        return 0
    case diag.StatusWarning:
        return 1
    case diag.StatusCritical:
        return 2
    default:
        return 3
    }
}

func setupLogging(cfg config.LoggingConfig) {
    level, err := logrus.ParseLevel(cfg.Level)
    if err != nil {
        level = logrus.InfoLevel
    }
    logrus.SetLevel(level)

    if cfg.Format == "json" {
        logrus.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logrus.SetFormatter(&logrus.TextFormatter{
            FullTimestamp: true,
        })
    }
    // Keep stdout clean for the report text.
    logrus.SetOutput(os.Stderr)
}
