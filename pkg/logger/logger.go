// Package logger wraps github.com/sirupsen/logrus with the banner/section
// helpers and package-level level functions the teacher's pkg/logger/logger.go
// exposed (Debug/Info/Warn/Error/Success/Fatal, Section, Banner), so call
// sites read the same way while gaining structured fields, text/json
// formatting, and level filtering from logrus instead of hand-rolled ANSI
// color codes.
package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stdout)
	std.SetLevel(logrus.InfoLevel)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
}

// Std returns the package's underlying *logrus.Logger, for callers that
// want a *logrus.Entry (e.g. per-connection loggers via WithField).
func Std() *logrus.Logger { return std }

// SetLevel sets the minimum level; accepts any logrus.Level.
func SetLevel(level logrus.Level) { std.SetLevel(level) }

// SetJSON switches the output formatter to JSON, for deployments that ship
// logs to a collector instead of a terminal.
func SetJSON(enabled bool) {
	if enabled {
		std.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
}

func Debug(format string, args ...interface{}) { std.Debugf(format, args...) }
func Info(format string, args ...interface{})  { std.Infof(format, args...) }
func Warn(format string, args ...interface{})  { std.Warnf(format, args...) }
func Error(format string, args ...interface{}) { std.Errorf(format, args...) }
func Success(format string, args ...interface{}) {
	std.WithField("result", "success").Infof(format, args...)
}
func Fatal(format string, args ...interface{}) { std.Fatalf(format, args...) }

// Section prints a section header, matching the teacher's box-drawn
// banners but through stdout directly (these are presentation, not log
// lines, so they bypass logrus's level filtering).
func Section(title string) {
	border := "═══════════════════════════════════════════════════════════"
	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║ %-57s ║\n", title)
	fmt.Printf("╚%s╝\n\n", border)
}

// Banner prints the application banner shown once at startup.
func Banner(title, version string) {
	const banner = `
╔═══════════════════════════════════════════════════════════╗
║                                                             ║
║   ██████╗  █████╗ ██╗  ██╗███╗   ██╗███████╗████████╗      ║
║   ██╔══██╗██╔══██╗██║ ██╔╝████╗  ██║██╔════╝╚══██╔══╝      ║
║   ██████╔╝███████║█████╔╝ ██╔██╗ ██║█████╗     ██║         ║
║   ██╔══██╗██╔══██║██╔═██╗ ██║╚██╗██║██╔══╝     ██║         ║
║   ██║  ██║██║  ██║██║  ██╗██║ ╚████║███████╗   ██║         ║
║   ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝   ╚═╝         ║
║                                                             ║
║              %-45s║
║                    Version %-10s               ║
║                                                             ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, title, version)
}
