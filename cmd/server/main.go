package main

import (
	"os"

	"github.com/yukikurage/hr-task-review-api/cmd/server/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
