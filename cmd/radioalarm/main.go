package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/config"
	"github.com/glebovdev/radioalarm/internal/httpapi"
	"github.com/glebovdev/radioalarm/internal/player"
	"github.com/glebovdev/radioalarm/internal/playlist"
	"github.com/glebovdev/radioalarm/internal/service"
	"github.com/glebovdev/radioalarm/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	wakeFlag    = flag.Bool("wake", false, "Start playing immediately, as if the alarm fired")
	listenFlag  = flag.String("listen", "", "Serve the control API on this address (e.g. 127.0.0.1:8090)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
	}
}

func setupLogging(debug bool) {
	if !debug {
		// Avoid TUI corruption by only logging errors to /dev/null
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		logFile, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0644)
		if err == nil {
			log.Logger = log.Output(logFile)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logDir, err := config.GetLogDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get log dir: %v\n", err)
		logDir = os.TempDir()
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
	}
	logPath := filepath.Join(logDir, "debug.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
		logFile = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	fmt.Printf("Debug log: %s\n", logPath)
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)

	if configPath, err := config.GetConfigPath(); err == nil {
		log.Debug().Msgf("Config: %s", configPath)
	}
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		os.Exit(0)
	}

	setupLogging(*debugFlag)

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
	}

	waker := alarm.NewTimerWaker(nil)
	svc := service.NewAlarmService(service.Options{
		Store:    config.NewPrefs(cfg),
		Waker:    waker,
		Audio:    player.NewStreamAudio(),
		Resolver: playlist.NewFetcher(config.UserAgent()),
		Stations: cfg.AllStations(),
	})
	waker.SetHandler(svc.OnWake)

	radioUI := ui.NewUI(svc, cfg.Theme)
	svc.Start(*wakeFlag || cfg.Autostart)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := *listenFlag
	if addr == "" {
		addr = cfg.Listen
	}
	if addr != "" {
		server := httpapi.NewServer(log.Logger, svc, config.AppVersion)
		go func() {
			if err := server.ListenAndServe(ctx, addr); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("Control API failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	uiDone := make(chan error, 1)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cleaning up...")
		radioUI.Shutdown()
	}()

	log.Info().Msg("Starting UI...")

	// Run UI in a goroutine so we can handle signals properly
	go func() {
		uiDone <- radioUI.Run()
	}()

	err = <-uiDone
	cancel()
	svc.Close()
	waker.Stop()

	if err != nil {
		log.Error().Err(err).Msg("Error running UI")
		os.Exit(1)
	}
	log.Info().Msgf("%s stopped", config.AppName)
}
