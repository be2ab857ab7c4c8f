package main

import (
	"os"

	"github.com/agentchat/agentchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
