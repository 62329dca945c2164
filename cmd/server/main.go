package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/mapbbcode/internal/config"
	"github.com/woozymasta/mapbbcode/internal/logger"
	"github.com/woozymasta/mapbbcode/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"    default:"8080"`
	FitWidth   int    `long:"fit-width"        env:"FIT_WIDTH"      description:"Widget width used to fill missing viewports"`
	FitHeight  int    `long:"fit-height"       env:"FIT_HEIGHT"     description:"Widget height used to fill missing viewports"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.FitWidth > 0 && opts.FitHeight > 0 {
		cfg.Fit.Width = opts.FitWidth
		cfg.Fit.Height = opts.FitHeight
	}

	srvCtx, err := server.NewServerContext(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", listenAddr).
		Str("open_tag", srvCtx.Codec.Grammar().OpenTagSubstring()).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
