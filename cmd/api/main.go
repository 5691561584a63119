package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"docstruct/internal/api"
	"docstruct/internal/config"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("docstruct api listening on %s", cfg.APIAddr)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
