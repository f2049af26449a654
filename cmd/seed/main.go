package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	pkgdb "github.com/Skotchmaster/restaurant/pkg/db"
	middleware "github.com/Skotchmaster/restaurant/pkg/middleware/auth"
	"github.com/Skotchmaster/restaurant/pkg/tokens"

	"github.com/Skotchmaster/restaurant/internal/config"
	"github.com/Skotchmaster/restaurant/internal/domain"
	"github.com/Skotchmaster/restaurant/internal/httpserver"
	"github.com/Skotchmaster/restaurant/internal/models"
	"github.com/Skotchmaster/restaurant/internal/repo"
)

var starterMenu = []models.MenuItem{
	{Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Price: decimal.RequireFromString("9.50"), Category: "mains", PreparationTime: 15},
	{Name: "Cheeseburger", Description: "Beef patty, cheddar, pickles", Price: decimal.RequireFromString("8.50"), Category: "mains", PreparationTime: 12},
	{Name: "Caesar Salad", Description: "Romaine, parmesan, croutons", Price: decimal.RequireFromString("6.75"), Category: "starters", PreparationTime: 8},
	{Name: "Tomato Soup", Price: decimal.RequireFromString("4.25"), Category: "starters", PreparationTime: 5},
	{Name: "French Fries", Price: decimal.RequireFromString("2.50"), Category: "sides", PreparationTime: 6},
	{Name: "Tiramisu", Price: decimal.RequireFromString("5.00"), Category: "desserts", PreparationTime: 4},
	{Name: "Lemonade", Price: decimal.RequireFromString("2.75"), Category: "drinks", PreparationTime: 2},
}

var starterChefs = []models.Chef{
	{Name: "Marco", Status: domain.ChefAvailable},
	{Name: "Aiko", Status: domain.ChefAvailable},
	{Name: "Dmitri", Status: domain.ChefUnavailable},
}

func main() {
	printTokens := flag.Bool("tokens", false, "print development access tokens for every role")
	flag.Parse()

	cfg := config.Load()
	cfg.MustValidate()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.OpenDriver(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := repo.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := repo.New(db)

	n, err := store.CountMenuItems(ctx)
	if err != nil {
		log.Fatalf("count menu items: %v", err)
	}
	if n > 0 {
		log.Printf("menu already has %d items, skipping seed", n)
	} else {
		for i := range starterMenu {
			item := starterMenu[i]
			item.Available = true
			if err := store.CreateMenuItem(ctx, &item); err != nil {
				log.Fatalf("seed menu item %q: %v", item.Name, err)
			}
		}
		log.Printf("seeded %d menu items", len(starterMenu))
	}

	chefs, err := store.ListChefs(ctx, nil)
	if err != nil {
		log.Fatalf("list chefs: %v", err)
	}
	if len(chefs) > 0 {
		log.Printf("roster already has %d chefs, skipping seed", len(chefs))
	} else {
		for i := range starterChefs {
			chef := starterChefs[i]
			if err := store.CreateChef(ctx, &chef); err != nil {
				log.Fatalf("seed chef %q: %v", chef.Name, err)
			}
		}
		log.Printf("seeded %d chefs", len(starterChefs))
	}

	if !*printTokens {
		return
	}
	for _, role := range []string{httpserver.RoleCashier, httpserver.RoleChef, httpserver.RoleWaiter, middleware.RoleAdmin} {
		tok, err := tokens.NewAccessToken("dev-"+role, role, cfg.JWTAccessSecret, 24*time.Hour)
		if err != nil {
			log.Fatalf("sign %s token: %v", role, err)
		}
		fmt.Printf("%s\t%s\n", role, tok)
	}
}
