// internal/cli/serve.go - long-lived daemon mode
package cli

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"
    "aidiag/internal/diag"
    "aidiag/internal/metrics"
    "aidiag/internal/store"
    "aidiag/internal/web"
)

func newServeCommand(configFile *string) *cobra.Command {
    return &cobra.Command{
        Use:   "serve",
        Short: "Run as a daemon with scheduler, web API and metrics",
        RunE: func(cmd *cobra.Command, args []string) error {
            return serve(*configFile)
        },
    }
}

func serve(configFile string) error {
    cfg, engine, err := buildEngine(configFile)
    if err != nil {
        return err
    }

    logrus.WithFields(logrus.Fields{
        "config_file": configFile,
        "listen":      cfg.Web.Listen,
        "interval":    cfg.EffectiveRefreshInterval(),
    }).Info("Starting aidiag daemon")

    historyStore, err := store.Open(cfg.History.Path, cfg.History.MaxPasses)
    if err != nil {
        return err
    }
    defer historyStore.Close()

    if last, err := historyStore.LastPass(); err == nil && last != nil {
        engine.RestoreLastPass(last)
        logrus.WithField("pass", last.ID).Debug("Restored last pass from history")
    }

    metricsCollector := metrics.NewCollector()

    webServer := web.NewServer(cfg, configFile, engine, historyStore, metricsCollector)

    engine.AddSink(func(pass *diag.DiagnosticPass) {
        if err := historyStore.SavePass(pass); err != nil {
            logrus.WithError(err).Error("Failed to persist pass")
        }
        metricsCollector.RecordPass(pass)
        metricsCollector.SetErrorLogSize(len(engine.ErrorLogEntries()))
        webServer.BroadcastPass(pass)
    })

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    engine.Start(ctx)

    if cfg.Web.Enabled {
        if err := webServer.Start(ctx); err != nil {
            return err
        }
    }

    // First pass right away; the scheduler takes over from here.
    engine.RunNow()

    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

    sig := <-sigChan
    logrus.WithField("signal", sig).Info("Received shutdown signal")

    cancel()

    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer shutdownCancel()
    if err := webServer.Stop(shutdownCtx); err != nil {
        logrus.WithError(err).Warn("Web server shutdown failed")
    }

    logrus.Info("Shutdown complete")
    return nil
}
