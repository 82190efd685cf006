package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-cpu-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	staticDir := flag.String("static", "static/", "Directory of static files served at /")
	flag.Parse()

	webServer := server.NewServerWithStatic(*port, *staticDir)

	log.Printf("CPU Raytracer Web Server")
	log.Printf("  GET /api/render?scene=default         single frame as PNG")
	log.Printf("  GET /api/stream?scene=default&frames=12  orbit as server-sent events")
	log.Printf("  GET /api/inspect?px=400&py=300        primary hit under a pixel")
	log.Printf("  GET /api/scenes, /api/health")

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
