package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gulali-id/backend-gulali/internal/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	staffID := flag.String("staff", "", "staff identifier to embed as the token subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	if *staffID == "" {
		log.Fatal("-staff is required")
	}
	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		log.Fatal("ADMIN_JWT_SECRET is not set")
	}
	issuer := os.Getenv("ADMIN_JWT_ISSUER")
	if issuer == "" {
		issuer = "gulali-admin"
	}

	guard, err := auth.NewGuard([]byte(secret), issuer)
	if err != nil {
		log.Fatalf("init guard: %v", err)
	}
	token, err := guard.MintStaffToken(*staffID, *ttl, time.Now())
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Println(token)
}
