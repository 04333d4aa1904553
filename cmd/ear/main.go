// ear renders acoustic impulse responses from a tagged-chunk .EAR scene
// file: a Monte Carlo path tracer over room geometry, convolved against
// each source's dry recording into one WAV file per listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ear-go/ear/internal/config"
	"github.com/ear-go/ear/internal/logger"
	"github.com/ear-go/ear/pkg/engine"
)

const version = "ear 0.1.0"

func main() {
	fmt.Println(version)

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "render":
		cmdRender(args)
	case "calc":
		cmdCalc(args)
	case "version", "-v", "--version":
		// already printed above
	case "help", "-h", "--help":
		printUsage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `ear - acoustic impulse-response renderer

Usage:
  ear render [-config file.yaml] <scene.ear>
  ear calc T60 [-config file.yaml] <scene.ear>
  ear version

Commands:
  render <scene.ear>      Render every listener's output WAV
  calc T60 <scene.ear>    Estimate T60 (ear, Sabine, Eyring) without writing WAVs
  version                 Print the build version`)
}

func loadEngine(args []string, fs *flag.FlagSet) (*engine.Engine, *config.Config) {
	configPath := fs.String("config", "", "path to an engine config YAML file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "missing scene file")
		os.Exit(1)
	}

	e, err := engine.Load(fs.Arg(0))
	if err != nil {
		logger.Error("failed to load scene", zap.Error(err))
		os.Exit(1)
	}
	return e, cfg
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	e, _ := loadEngine(args, fs)
	defer logger.Sync()

	if err := e.Run(context.Background()); err != nil {
		logger.Error("render failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("render complete")
}

func cmdCalc(args []string) {
	if len(args) < 1 || args[0] != "T60" {
		fmt.Fprintln(os.Stderr, "Usage: ear calc T60 <scene.ear>")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	e, _ := loadEngine(args[1:], fs)
	defer logger.Sync()

	t60, err := e.CalcT60(context.Background())
	if err != nil {
		logger.Error("T60 estimate failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("T60_ear   : %.3f\n", t60.Ear)
	fmt.Printf("T60_sabine: %.3f\n", t60.Sabine)
	fmt.Printf("T60_eyring: %.3f\n", t60.Eyring)
}
