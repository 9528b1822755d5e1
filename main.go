package main

import (
	"os"

	"github.com/fadhlanhapp/manpower-backend/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
