package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"stock-backend/internal/config"
	"stock-backend/internal/database"
	"stock-backend/internal/db"
)

func main() {
	masterData := flag.Bool("master-data", false, "also clear organizations, storages, employees, suppliers, customers, contracts and operations")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	fmt.Println("WARNING: this deletes every invoice and product and resets their stock.")
	if *masterData {
		fmt.Println("Master data will be cleared as well. Users are kept.")
	}

	if !*yes {
		fmt.Print("Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Println("Reset cancelled.")
			return
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	cleared, err := database.Reset(ctx, pool, *masterData)
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, t := range cleared {
		fmt.Printf("  cleared %s\n", t)
	}
	fmt.Println("Database reset successful.")
}
