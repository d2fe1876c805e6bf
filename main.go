// Command Casestudy is the desktop transcript scorer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Navyasribhaskar/Casestudy/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to config.json (default: ./config.json)")
	flag.Parse()

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := app.Run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "scorer: %v\n", err)
		os.Exit(1)
	}
}
