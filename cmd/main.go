package main

import (
	"context"
	"log"
	"os"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/app"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/app/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
