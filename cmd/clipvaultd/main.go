// clipvaultd is the background daemon: it owns the library database, the
// task queue, and the IPC socket the clipvault CLI talks to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"clipvault/internal/config"
	"clipvault/internal/daemonrun"
)

func main() {
	var configPath string
	var socketPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.StringVar(&socketPath, "socket", "", "IPC socket path override")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "clipvaultd: load config: %v\n", err)
		os.Exit(1)
	}

	err = daemonrun.Run(context.Background(), cfg, daemonrun.Options{
		SocketPath: socketPath,
		LogLevel:   logLevel,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "clipvaultd: %v\n", err)
		os.Exit(1)
	}
}
