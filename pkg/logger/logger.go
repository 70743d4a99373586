// Package logger 建立以 charmbracelet/log 為 handler 的 slog.Logger
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Config 日誌設定
type Config struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // text, json, logfmt
	Prefix     string `yaml:"prefix"`      // 每行前綴
	TimeFormat string `yaml:"time_format"` // 空字串使用預設
}

var formatters = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

// New 建立 logger，w 為 nil 時寫到 stdout
// 無法解析的 level 視為 info，未知的 format 視為 text
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	formatter, ok := formatters[strings.ToLower(cfg.Format)]
	if !ok {
		formatter = log.TextFormatter
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04:05.000"
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           level,
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	handler.SetStyles(styles())
	return slog.New(handler)
}

// Setup 建立 logger 並設為 slog 預設
func Setup(cfg Config) *slog.Logger {
	l := New(cfg, os.Stdout)
	slog.SetDefault(l)
	return l
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	warn := lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}

	s.Levels[log.WarnLevel] = lipgloss.NewStyle().SetString("WARN").Bold(true).Foreground(warn)
	s.Levels[log.ErrorLevel] = lipgloss.NewStyle().SetString("ERROR").Bold(true).Foreground(errColor)
	s.Keys["error"] = lipgloss.NewStyle().Foreground(errColor)
	s.Values["error"] = lipgloss.NewStyle().Bold(true)
	s.Keys["ref_id"] = lipgloss.NewStyle().Faint(true)
	return s
}
