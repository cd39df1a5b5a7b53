// main is the entry point for the testpulse CLI.
package main

import (
	"github.com/huangsam/testpulse/cmd"
	"github.com/huangsam/testpulse/internal/contract"
	"github.com/huangsam/testpulse/internal/persist"
)

func main() {
	defer persist.CloseStores()
	defer func() {
		if err := cmd.StopProfiling(); err != nil {
			contract.LogWarn("Failed to stop profiling", err)
		}
	}()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
