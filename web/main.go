package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-ppm-raytracer/pkg/config"
	"github.com/df07/go-ppm-raytracer/web/server"
)

func main() {
	// RT_PORT from the environment or .env sets the default port
	cfg, err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "Port to serve on")
	flag.Parse()

	if *port < 1 || *port > 65535 {
		log.Printf("Invalid port: %d", *port)
		os.Exit(1)
	}

	webServer := server.NewServer(*port)

	log.Printf("PPM Raytracer Web Server")
	log.Printf("Visit http://localhost:%d/api/scenes to list scenes", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
