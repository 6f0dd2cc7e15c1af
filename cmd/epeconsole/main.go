// Command epeconsole is the terminal admin console for the EPE email and
// document ingestion pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/epe-tools/epeconsole/internal/api"
	"github.com/epe-tools/epeconsole/internal/buildinfo"
	"github.com/epe-tools/epeconsole/internal/config"
	"github.com/epe-tools/epeconsole/internal/logging"
	"github.com/epe-tools/epeconsole/internal/session"
	"github.com/epe-tools/epeconsole/internal/tui"
)

var (
	configPath  string
	baseURL     string
	showVersion bool
)

func init() {
	_ = godotenv.Load()
	logging.SetupBaseLogger()

	flag.StringVar(&configPath, "config", config.DefaultConfigPath(), "path to the configuration file")
	flag.StringVar(&baseURL, "base-url", "", "backend base URL (overrides the config file)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("epeconsole %s (commit %s, built %s)\n",
			buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)
		return
	}

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epeconsole: %v\n", err)
		os.Exit(1)
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if v := os.Getenv("EPE_BASE_URL"); v != "" && baseURL == "" {
		cfg.BaseURL = v
	}

	logging.Setup(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "epeconsole: stdout is not a terminal")
		os.Exit(1)
	}

	store := session.NewStore(cfg.TokenFile)
	store.Load()

	client := api.NewClient(cfg.BaseURL, store.Token)
	client.SetRequestLog(cfg.RequestLog)

	log.WithFields(log.Fields{
		"version":  buildinfo.Version,
		"base-url": cfg.BaseURL,
	}).Info("console starting")

	if err := tui.Run(configPath, cfg, client, store); err != nil {
		fmt.Fprintf(os.Stderr, "epeconsole: %v\n", err)
		os.Exit(1)
	}
}
