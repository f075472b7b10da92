package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"github.com/scusemua/execution-monitor/m/v2/internal/server"
)

func main() {
	// Load ENV from .env file, if there is one.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "[WARN] Failed to load .env file: %v\n", err)
	}

	conf := domain.GetDefaultConfig()
	conf.CheckUsage()

	srv := server.NewServer(conf)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	closed := make(chan struct{})
	go func() {
		defer close(closed)

		<-sigs
		if err := srv.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] Failed to shut down cleanly: %v\n", err)
		}
	}()

	// Blocking call. Returns once Close has been called.
	if err := srv.Serve(); err != nil {
		panic(err)
	}

	<-closed
}
