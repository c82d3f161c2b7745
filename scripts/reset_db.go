package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"catering-backend/internal/config"
	"catering-backend/internal/db"
	"catering-backend/internal/logging"

	"github.com/jackc/pgx/v5"
)

// Child tables first; TRUNCATE ... CASCADE covers the rest.
var businessTables = []string{
	"stock_txns",
	"stock_items",
	"workforce_payments",
	"workforce_members",
	"expenses",
	"online_transactions",
	"bills",
	"order_items",
	"orders",
	"menu_items",
	"customer_otps",
	"customers",
	"admin_action_logs",
	"login_logs",
}

func main() {
	keepUsers := flag.Bool("keep-users", true, "keep staff accounts")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("   Reset Database for Testing")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("WARNING: This will DELETE ALL BUSINESS DATA!")
	fmt.Println("  - customers and their OTPs, menu, orders, bills and online payments")
	fmt.Println("  - expenses, workforce, stock")
	fmt.Println("  - login and admin action logs")
	if !*keepUsers {
		fmt.Println("  - staff accounts (the bootstrap admin is recreated on next start)")
	}
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	cfg := config.Load()
	logging.Init(cfg.Log.Level, cfg.Log.Format)
	log := logging.For("Reset")

	pool := db.Connect(cfg)
	defer pool.Close()

	tables := businessTables
	if !*keepUsers {
		tables = append(tables, "users")
	}

	ctx := context.Background()
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
		for _, seq := range []string{"order_number_seq", "bill_number_seq"} {
			if _, err := tx.Exec(ctx, "ALTER SEQUENCE "+seq+" RESTART WITH 1"); err != nil {
				return fmt.Errorf("reset %s: %w", seq, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("reset failed: %v", err)
	}

	for _, t := range tables {
		fmt.Printf("  cleared %s\n", t)
	}
	fmt.Println()
	fmt.Println("Database reset successful. Order and bill numbers restart at 000001.")
}
