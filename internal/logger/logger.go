package logger

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorize wraps s in the given ANSI color unless NO_COLOR is set.
func colorize(color, s string) string {
	if os.Getenv("NO_COLOR") != "" {
		return s
	}
	return color + s + colorReset
}

func logLine(level, color, tag, msg string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Printf("%s %s %s %s\n",
		colorize(colorGray, ts),
		colorize(color, fmt.Sprintf("%-7s", level)),
		colorize(colorBold, "["+tag+"]"),
		msg)
}

// Info logs an informational message under a component tag.
func Info(tag, msg string) {
	logLine("INFO", colorCyan, tag, msg)
}

// Success logs a completed operation.
func Success(tag, msg string) {
	logLine("OK", colorGreen, tag, msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	logLine("WARN", colorYellow, tag, msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	logLine("ERROR", colorRed, tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Println(colorize(colorCyan, strings.Repeat("=", 60)))
	fmt.Println(colorize(colorBold, "  kbbot "+version))
	fmt.Println(colorize(colorCyan, strings.Repeat("=", 60)))
}

// Section prints a visual separator with a title.
func Section(title string) {
	fmt.Println(colorize(colorGray, "---- "+title+" "+strings.Repeat("-", maxInt(0, 54-len(title)))))
}

// Stats prints a key/value statistic line.
func Stats(key string, value any) {
	fmt.Printf("  %s %v\n", colorize(colorGray, key+":"), value)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
