package main

import (
	"fmt"
	"log"

	"github.com/aussiebroadwan/sessiond/internal/session/app"
	"github.com/common-nighthawk/go-figure"
)

func main() {
	banner := figure.NewFigure("sessiond", "cybermedium", true)
	banner.Print()
	fmt.Println()

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
