package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"crewdesk.org/internal/adminclient"
	"crewdesk.org/internal/useradmin"
)

// Smoke test against a running crewdesk-admin instance: obtain a token for a
// seeded super admin, provision a user, promote, deactivate and delete it.
func main() {
	log.SetFlags(0)
	var (
		baseURL = flag.String("url", envOr("CREWDESK_URL", "http://localhost:8080"), "Service base URL")
		caller  = flag.String("caller", os.Getenv("CREWDESK_SMOKE_CALLER"), "Identity id of a super admin to act as")
		email   = flag.String("email", fmt.Sprintf("smoke-%d@example.com", time.Now().Unix()), "Email for the throwaway user")
	)
	flag.Parse()

	if *caller == "" {
		log.Fatal("missing caller: provide via -caller or CREWDESK_SMOKE_CALLER")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := adminclient.New(*baseURL)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	if err := client.Health(ctx); err != nil {
		log.Fatalf("health check at %s: %v", *baseURL, err)
	}
	if _, _, err := client.ObtainToken(ctx, *caller); err != nil {
		log.Fatalf("obtain token: %v", err)
	}

	userID, err := client.CreateUser(ctx, *email, "smoke-pass-1", "Smoke User", useradmin.RoleEmployee)
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	// The second create with the same email must conflict.
	if _, err := client.CreateUser(ctx, *email, "smoke-pass-1", "Smoke User", useradmin.RoleEmployee); err == nil {
		log.Fatal("duplicate create unexpectedly succeeded")
	}

	if err := client.UpdateRole(ctx, userID, useradmin.RoleAdmin); err != nil {
		log.Fatalf("update role: %v", err)
	}

	profileID := flag.Arg(0)
	if profileID != "" {
		if err := client.ToggleActive(ctx, profileID, false); err != nil {
			log.Fatalf("toggle active: %v", err)
		}
		if err := client.DeleteUser(ctx, userID, profileID); err != nil {
			log.Fatalf("delete user: %v", err)
		}
	}

	fmt.Printf("admin smoke test passed: user=%s\n", userID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
