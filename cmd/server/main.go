// Package main is the entry point for the measureedit API server
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/james-see/measureedit/pkg/api"
	"github.com/james-see/measureedit/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = strconv.Itoa(*port)
	}

	fmt.Printf("Starting measureedit API server on port %s...\n", cfg.Server.Port)
	fmt.Printf("Swagger docs available at http://localhost:%s/swagger/index.html\n", cfg.Server.Port)

	if err := api.StartServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
