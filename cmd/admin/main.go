// Package main provides admin management utilities for AlumNet.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"alumnet/internal/config"
	"alumnet/internal/database"
	"alumnet/internal/models"
	"alumnet/internal/repository"
	"alumnet/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <username|id>     - Grant the admin role")
		fmt.Println("  go run ./cmd/admin demote <username|id>      - Revoke the admin role")
		fmt.Println("  go run ./cmd/admin deactivate <username|id>  - Deactivate an account")
		fmt.Println("  go run ./cmd/admin list-admins               - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	repo := repository.NewUserRepository(db)
	users := service.NewUserService(repo)

	command := os.Args[1]
	if command == "list-admins" {
		listAdmins(ctx, users)
		return
	}

	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin %s <username|id>\n", command)
		os.Exit(1)
	}
	target, err := lookup(ctx, repo, os.Args[2])
	if err != nil {
		log.Fatalf("User %s: %v", os.Args[2], err)
	}

	// actor 0 is the operator; the self-protection rules never match it
	var updated *models.User
	switch command {
	case "promote":
		updated, err = users.SetAdmin(ctx, 0, target.ID, true)
	case "demote":
		updated, err = users.SetAdmin(ctx, 0, target.ID, false)
	case "deactivate":
		updated, err = users.SetActive(ctx, 0, target.ID, false)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}

	fmt.Printf("%s (ID: %d) admin=%t active=%t\n", updated.Username, updated.ID, updated.IsAdmin, updated.IsActive)
}

func lookup(ctx context.Context, repo repository.UserRepository, ref string) (*models.User, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return repo.GetByID(ctx, uint(id))
	}
	return repo.GetByUsername(ctx, ref)
}

func listAdmins(ctx context.Context, users *service.UserService) {
	const pageSize = 100

	fmt.Println("Admins:")
	n := 0
	for offset := 0; ; offset += pageSize {
		page, err := users.ListUsers(ctx, models.UserFilter{IncludeInactive: true, Limit: pageSize, Offset: offset})
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		for _, u := range page.Users {
			if !u.IsAdmin {
				continue
			}
			n++
			fmt.Printf("  %d  %-24s %s\n", u.ID, u.Username, u.Email)
		}
		if len(page.Users) < pageSize {
			break
		}
	}
	if n == 0 {
		fmt.Println("  (none)")
	}
}
