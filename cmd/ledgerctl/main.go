package main

import (
	"os"

	"github.com/atmledger/ledger-service/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
