// cmd/hashpw/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/pkg/auth"
)

// Prints a bcrypt hash for inserting staff users by hand
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./cmd/hashpw <password>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	hash, err := auth.NewPasswordManager(cfg).HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Println(hash)
}
