package main

import (
	"os"

	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/heywrite/cmd"
)

func main() {
	dotenv.LoadEnv()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
