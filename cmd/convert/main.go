package main

import (
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/mapbbcode/internal/config"
	"github.com/woozymasta/mapbbcode/internal/logger"
	"github.com/woozymasta/mapbbcode/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file"`
	Input       []string `short:"i" long:"in"          description:"Input file path, repeatable. Reads from stdin if empty"`
	Output      string   `short:"o" long:"out"         description:"Output file path for a single input. Writes to stdout if empty"`
	OutDir      string   `short:"d" long:"out-dir"     description:"Output directory, required for several inputs"`
	From        string   `short:"F" long:"from"        description:"Input format, detected from the file extension if empty" choice:"bbcode" choice:"json" choice:"yaml" choice:"geojson" choice:"wkt"`
	To          string   `short:"f" long:"format"      description:"Output format" choice:"bbcode" choice:"json" choice:"yaml" choice:"geojson" choice:"wkt" default:"json"`
	Extract     bool     `short:"x" long:"extract"     description:"Convert every map tag of a markup input, not only the first"`
	Minify      bool     `short:"m" long:"minify"      description:"Write compact JSON and GeoJSON"`
	FitWidth    int      `long:"fit-width"             description:"Widget width used to fill missing viewports"`
	FitHeight   int      `long:"fit-height"            description:"Widget height used to fill missing viewports"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency for several inputs" default:"4"`
	Force       bool     `long:"force"                 description:"Force overwrite of existing files in the output directory"`
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

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.FitWidth > 0 && opts.FitHeight > 0 {
		cfg.Fit.Width = opts.FitWidth
		cfg.Fit.Height = opts.FitHeight
	}

	codec, err := cfg.Codec()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid markup configuration")
	}

	proc := processor.New(codec, processor.Options{
		From:    processor.Format(opts.From),
		To:      processor.Format(opts.To),
		Extract: opts.Extract,
		Minify:  opts.Minify,
		Fit:     cfg.Fit,
	})

	if len(opts.Input) > 1 || opts.OutDir != "" {
		if opts.OutDir == "" {
			log.Fatal().Msg("--out-dir is required for several inputs")
		}
		runBatch(proc, opts)
		return
	}

	// Read Input
	var inputData []byte
	from := processor.Format(opts.From)

	if len(opts.Input) == 1 {
		inputData, err = os.ReadFile(opts.Input[0])
		if err != nil {
			log.Fatal().Err(err).Str("path", opts.Input[0]).Msg("Failed to read input file")
		}
		if from == "" {
			from = processor.DetectFormat(opts.Input[0])
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stdin")
		}
		if from == "" {
			from = processor.FormatBBCode
		}
	}

	docs, err := proc.Decode(inputData, from)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode input")
	}
	outputData, err := proc.Encode(docs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output file")
		}
		log.Info().
			Int("docs", len(docs)).
			Str("out", opts.Output).
			Str("format", opts.To).
			Msg("Conversion finished")
		return
	}

	fmt.Println(string(outputData))
}

func runBatch(proc *processor.Processor, opts Options) {
	log.Info().
		Int("inputs", len(opts.Input)).
		Str("out_dir", opts.OutDir).
		Int("concurrency", opts.Concurrency).
		Msg("Starting batch conversion")

	failed := 0
	for _, res := range proc.ProcessFiles(opts.Input, opts.OutDir, opts.Concurrency, opts.Force) {
		if res.Err != nil {
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Batch conversion finished with errors")
	}
	log.Info().Msg("Batch conversion finished successfully")
}
