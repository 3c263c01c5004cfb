package main

import (
	"os"

	"github.com/davicafu/hexaspec/internal/cli"
	"github.com/davicafu/hexaspec/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	err := cli.NewRootCommand().Execute()
	_ = logger.Logger().Sync() // flush buffers al salir
	if err != nil {
		os.Exit(1)
	}
}
