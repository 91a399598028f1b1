package main

import (
	"fmt"
	"os"

	"github.com/virtengine/virtengine-sub005/cmd/veclient/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
