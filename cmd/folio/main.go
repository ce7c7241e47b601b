// Точка входа сервиса редактора folio: читает конфигурацию из окружения, настраивает логирование и запускает HTTP-сервер
// до получения SIGINT или SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aisa-it/folio/internal/folio"
	"github.com/aisa-it/folio/internal/folio/config"
)

var version string = "DEV"

// Пример запуска: API_URL=https://api.example.com go run main.go --trace
func main() {
	trace := flag.Bool("trace", false, "Verbose logs")
	flag.Parse()

	PrintBanner()

	if *trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Set prod log format
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
	}

	cfg := config.ReadConfig()

	slog.Info("Folio start.", "api", cfg.APIURL.String(), "listen", cfg.ListenAddr, "sessionCheck", cfg.SessionCheck)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := folio.Server(ctx, cfg, version); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("Folio stopped.")
}

// PrintBanner выводит название сервиса и версию при запуске.
func PrintBanner() {
	banner := `
  __       _ _
 / _| ___ | (_) ___
| |_ / _ \| | |/ _ \
|  _| (_) | | | (_) |
|_|  \___/|_|_|\___/ %s
Draft editor backend for blog posts and projects
----------------------------------------------------
`
	colorReset := "\033[0m"
	colorYellow := "\033[33m"

	formattedVersion := version
	if version == "DEV" {
		formattedVersion = colorYellow + version + colorReset
	}

	fmt.Printf(banner, formattedVersion)
}
