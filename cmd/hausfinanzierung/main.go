package main

import (
	"os"

	"github.com/sq3/hausfinanzierungs-dashboard/cmd/hausfinanzierung/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
