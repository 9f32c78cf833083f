package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/keithhb33/MathVis/cmd/cli/commands"
)

func main() {
	// Load .env so local setups can point the CLI at their server
	// through MATHVIS_SERVER_ADDRESS without passing flags.
	_ = godotenv.Load()

	if err := commands.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
