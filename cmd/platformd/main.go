package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kr8tiv/platform-core/pkg/app/platform"
	"github.com/kr8tiv/platform-core/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := platform.NewServer(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "platform daemon exited with error: %v\n", err)
		os.Exit(1)
	}
}
