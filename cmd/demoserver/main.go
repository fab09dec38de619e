// Command demoserver starts the demo shop for trying scan and watch locally.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/raysh454/ethicheck/internal/demoserver"
	"github.com/raysh454/ethicheck/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()
	logger := logging.NewStdoutLogger("demoserver")

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			logger.Error("invalid port", logging.Field{Key: "arg", Value: os.Args[1]})
			os.Exit(2)
		}
		cfg.Port = port
	}

	fmt.Println("===========================================")
	fmt.Println("   ethicheck demo shop")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Checkout pages, one per extraction strategy:")
	for _, p := range demoserver.AllPages() {
		fmt.Printf("  %-24s %s\n", p.Path, p.Description)
	}
	fmt.Println()
	fmt.Printf("Try: ethicheck scan http://localhost:%d/checkout/structured\n", cfg.Port)
	fmt.Println()

	server, err := demoserver.NewDemoServer(cfg, logger)
	if err != nil {
		logger.Error("demo shop setup", logging.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil {
		logger.Error("demo shop stopped", logging.Err(err))
		os.Exit(1)
	}
}
