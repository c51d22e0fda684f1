package main

import (
	"fmt"
	"os"

	"github.com/machlit/cutler/cmd/cutler"
	"github.com/machlit/cutler/pkg/style"
)

func main() {
	rootCmd := cutler.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := style.Get("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
