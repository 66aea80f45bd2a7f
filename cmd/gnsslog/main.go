package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gnsslog/internal/config"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: gnsslog [-config path] [-publish] summary <file>...\n")
	fmt.Fprintf(flag.CommandLine.Output(), "       gnsslog [-config path] serve\n\n")
	flag.PrintDefaults()
}

func main() {
	var configPath string
	var publishResults bool
	flag.StringVar(&configPath, "config", "", "Path to YAML config (defaults apply when empty)")
	flag.BoolVar(&publishResults, "publish", false, "summary: also send results to the configured sinks")
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("config load failed: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch flag.Arg(0) {
	case "summary":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		err = runSummary(ctx, os.Stdout, cfg, flag.Args()[1:], publishResults)
	case "serve":
		err = runServe(ctx, cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatalf("gnsslog %s: %v", flag.Arg(0), err)
	}
}
