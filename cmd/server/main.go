package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shakilbd009/lead-finder/internal/config"
	"github.com/shakilbd009/lead-finder/internal/db"
	"github.com/shakilbd009/lead-finder/internal/handler"
)

func main() {
	cfg := config.Load()

	store, err := db.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	if cfg.Password == "" {
		log.Printf("LEADS_PASSWORD is not set, every login will be rejected")
	}
	h := handler.New(store, handler.NewAuth(cfg.Email, cfg.Password, cfg.JWTSecret))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting server on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
