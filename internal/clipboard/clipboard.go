// internal/clipboard/clipboard.go
package clipboard

import (
    "fmt"

    "github.com/atotto/clipboard"
)

// WriteText copies text to the system clipboard so a rendered report can be
// pasted straight into a bug report or support chat.
func WriteText(text string) error {
    if clipboard.Unsupported {
        return fmt.Errorf("no clipboard available on this system")
    }
    if err := clipboard.WriteAll(text); err != nil {
        return fmt.Errorf("failed to write clipboard: %w", err)
    }
    return nil
}
