package main

import (
	"os"

	"github.com/netbirdio/allowedips/client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
