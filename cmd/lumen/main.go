// Command lumen runs the Lumen admin API and its operator tooling.
package main

import (
	"log/slog"
	"os"

	"github.com/lumen-ngo/lumen/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
