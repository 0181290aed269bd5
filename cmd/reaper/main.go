// One-shot sweep that releases review assignments held past the timeout.
// Run from cron; claims racing the sweep survive because the release is
// conditioned on the expiry predicate at write time.
package main

import (
	"accountability-api/config"
	"accountability-api/services"
	"flag"
	"log"

	"github.com/joho/godotenv"
)

func main() {
	maxAge := flag.Duration("max-age", services.DefaultAssignmentMaxAge,
		"release assignments older than this")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	released, err := services.NewReviewQueueService(config.DB).ReleaseExpired(*maxAge)
	if err != nil {
		log.Fatal("Failed to release expired assignments:", err)
	}

	log.Printf("Released %d expired assignment(s)", released)
}
