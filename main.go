package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"

	"devlink-social-network/database"
	"devlink-social-network/pkg/db/sqlite"
	"devlink-social-network/store"
	"devlink-social-network/util/api"
)

func main() {
	log.Println("Initializing application...")

	dbPath := flag.String("db", "./devlink.db", "path to the SQLite database file")
	migrationsPath := flag.String("migrations", "pkg/db/migrations/sqlite", "path to the migration files")
	flag.Parse()

	log.Printf("Using database at: %s", *dbPath)

	// Apply migrations before initializing the database
	migrateDB, err := sqlite.ConnectAndMigrate(*dbPath, *migrationsPath)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	migrateDB.Close()

	// Initialize Database
	if err := database.InitDB(database.DSN(*dbPath)); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	api.Posts = store.New(database.DB)

	mux := api.NewRouter()

	// --- CORS Middleware ---
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true, // Required for cookies!
	})

	handler := c.Handler(mux)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server running on localhost:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
