package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/zipref"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: zipscrape <msa-slug> [<msa-slug>...]")
		fmt.Fprintln(os.Stderr, "Example: zipscrape zip-codes-in-virginia-beach-norfolk-newport-news-va-nc")
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	scraper := zipref.NewScraper(cfg.ZipRef)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var okCount, errCount int
	for _, slug := range os.Args[1:] {
		fmt.Printf("Fetching ZIP table for: %s\n", slug)
		entries, err := scraper.FetchMSA(ctx, slug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			errCount++
			continue
		}

		path, err := zipref.WriteWorkbook(entries, slug, ".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			errCount++
			continue
		}
		fmt.Printf("Done! %d rows saved to %s\n", len(entries), path)
		okCount++
	}

	if len(os.Args) > 2 {
		log.Printf("Done: %d OK, %d errors", okCount, errCount)
	}
	if errCount > 0 {
		os.Exit(1)
	}
}
