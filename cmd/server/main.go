package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"notekeep/internal/auth"
	"notekeep/internal/config"
	"notekeep/internal/db"
	"notekeep/internal/handlers"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "notekeep.db")
	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if cfg.JWTSecret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		cfg.JWTSecret = hex.EncodeToString(secretBytes)
		log.Printf("Generated JWT secret (set JWT_SECRET env var to persist): %s", cfg.JWTSecret)
	}

	a := auth.New(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	h := handlers.New(database, a, cfg.PasswordMinLen)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting Notekeep server on %s", addr)

	if err := h.Router().Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
