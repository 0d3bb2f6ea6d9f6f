package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gameshelf/internal/buildinfo"
	"github.com/dmitrijs2005/gameshelf/internal/client/cli"
	"github.com/dmitrijs2005/gameshelf/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	cli.NewApp(cfg).Run(context.Background())
}
