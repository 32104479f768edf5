package main

import (
	"log"

	"github.com/relabs-tech/tiltdrop/internal/app"
	"github.com/relabs-tech/tiltdrop/internal/config"
)

func main() {
	log.Println("starting tiltdrop console (MQTT subscriber)")

	if err := config.InitGlobal("tiltdrop_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
