package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"scrimworks/quartermaster/internal/auth"
)

func main() {
	discordID := flag.String("discord-id", "", "identity the token is minted for")
	role := flag.String("role", auth.RoleAdmin, "API role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *discordID == "" {
		log.Fatal("-discord-id is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	token, err := auth.MintToken(*discordID, *role, secret, *ttl)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}

	fmt.Println("New token:", token)
}
