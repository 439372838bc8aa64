// internal/cli/version.go
package cli

import (
    "fmt"
    "runtime"

    "github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
    Version = "dev"
    Commit  = ""
)

func newVersionCommand() *cobra.Command {
    return &cobra.Command{
        Use:   "version",
        Short: "Show version information",
        Run: func(cmd *cobra.Command, args []string) {
            fmt.Printf("aidiag %s\n", Version)
            if Commit != "" {
                fmt.Printf("Commit: %s\n", Commit)
            }
            fmt.Printf("Go version: %s\n", runtime.Version())
        },
    }
}
