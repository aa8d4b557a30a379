// Package banner prints the startup/shutdown banner to stderr.
package banner

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
	"go.uber.org/zap"
)

const version = "0.1.0"

// Info describes what the startup banner reports. Callers fill in whatever
// fields are relevant to the role being started.
type Info struct {
	Role      string
	Addr      string
	DataPath  string
	DBPath    string
	MaxAgeSec int
}

// PrintStartup writes the startup banner for role to stderr and logs a
// matching structured event.
func PrintStartup(info Info, logger *zap.Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 62
	hr := lineColor + strings.Repeat("=", width) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  job-orchestrator%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	kvPad := 12
	kvLines := [][2]string{
		{"Version", version},
		{"Role", info.Role},
		{"Listen", info.Addr},
	}
	if info.DataPath != "" {
		kvLines = append(kvLines, [2]string{"Data", info.DataPath})
	}
	if info.DBPath != "" {
		kvLines = append(kvLines, [2]string{"DB", info.DBPath})
	}
	if info.MaxAgeSec > 0 {
		kvLines = append(kvLines, [2]string{"MaxAge", fmt.Sprintf("%ds", info.MaxAgeSec)})
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n%s\n\n", hr)

	logger.Info("started",
		zap.String("version", version),
		zap.String("role", info.Role),
		zap.String("addr", info.Addr),
	)
}

// PrintShutdown writes the shutdown banner to stderr.
func PrintShutdown(logger *zap.Logger) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("=", 42) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  shutting down%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n\n", hr)

	logger.Info("shutting down")
}
