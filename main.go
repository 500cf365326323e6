package main

import (
	"os"

	"github.com/admingistai/vibe-qa/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
