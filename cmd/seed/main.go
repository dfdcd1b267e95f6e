// seed loads a small demo dataset: two categories, a handful of textile
// products, a month of production entries, and a few workshop expenses.
// Run it against a freshly migrated database to have something to look at.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"workshop-manager/internal/db"
)

func main() {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	log.Println("Seeding categories and products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO categories (name) VALUES
			('Decoração'),
			('Cama e Banho');

		INSERT INTO products (name, sale_value, labor_cost, category_id) VALUES
			('Almofada', 50.00, 20.00, 1),
			('Cortina',  120.00, 45.00, 1),
			('Tapete',   80.00, 30.00, 1),
			('Colcha',   150.00, 60.00, 2),
			('Jogo de Toalhas', 90.00, 35.00, 2);
	`)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Println("Seeding production entries...")
	_, err = tx.Exec(ctx, `
		INSERT INTO production_entries (product_id, date, quantity, paid, invoice_number) VALUES
			(1, CURRENT_DATE - 20, 10, true,  '1201'),
			(2, CURRENT_DATE - 18, 4,  true,  '1201'),
			(3, CURRENT_DATE - 12, 6,  false, NULL),
			(4, CURRENT_DATE - 7,  3,  false, '1215'),
			(1, CURRENT_DATE - 3,  8,  false, NULL),
			(5, CURRENT_DATE - 1,  5,  false, NULL);
	`)
	if err != nil {
		log.Fatalf("Failed to seed entries: %v", err)
	}

	log.Println("Seeding expenses...")
	_, err = tx.Exec(ctx, `
		INSERT INTO expenses (description, value, date) VALUES
			('Linha e agulhas', 45.00, CURRENT_DATE - 15),
			('Manutenção da máquina de costura', 180.00, CURRENT_DATE - 10),
			('Energia elétrica', 95.50, CURRENT_DATE - 2);
	`)
	if err != nil {
		log.Fatalf("Failed to seed expenses: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Seed complete.")
}
