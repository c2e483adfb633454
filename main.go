package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"tidu/pkg/cli"
	"tidu/pkg/config"
	"tidu/pkg/logging"
)

func main() {
	// A local .env can set TIDU_* overrides and DEBUG.
	if err := godotenv.Load(); err == nil {
		logging.Debug("main", "loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	app, err := cli.NewApp(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		app.Close()
		os.Exit(1)
	}
}
