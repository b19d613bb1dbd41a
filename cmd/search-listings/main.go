package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/JamesLuiz/House-me/config"
	"github.com/JamesLuiz/House-me/internal/listings"
)

func main() {
	config.LoadEnvFile()

	apiURL := flag.String("api", envOr("API_URL", config.DefaultAPIURL), "Listings API base URL")
	id := flag.String("id", "", "Fetch a single listing by id")
	query := flag.String("q", "", "Free-text search")
	location := flag.String("location", "", "Location filter")
	propertyType := flag.String("type", "", "Property type filter (e.g., duplex)")
	minPrice := flag.Int64("min", 0, "Minimum price in naira")
	maxPrice := flag.Int64("max", 0, "Maximum price in naira")
	limit := flag.Int("limit", 10, "Number of results")
	skip := flag.Int("skip", 0, "Results to skip")
	rawJSON := flag.Bool("json", false, "Output raw JSON only")
	flag.Parse()

	client := listings.NewClient(strings.TrimRight(*apiURL, "/"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *id != "" {
		result := client.Get(ctx, *id)
		if !result.Found() {
			fail(result.Status, result.Err)
		}
		if *rawJSON {
			printJSON(result.Listing)
			return
		}
		printListing(1, *result.Listing)
		if result.Listing.Description != "" {
			fmt.Printf("\n%s\n", result.Listing.Description)
		}
		return
	}

	result := client.Search(ctx, listings.Filter{
		MinPrice: *minPrice,
		MaxPrice: *maxPrice,
		Location: *location,
		Type:     *propertyType,
		Search:   *query,
		Limit:    *limit,
		Skip:     *skip,
	})
	if result.Status == listings.StatusFailed {
		fail(result.Status, result.Err)
	}

	if *rawJSON {
		printJSON(result.Listings)
		return
	}

	fmt.Printf("Found %d results\n\n", len(result.Listings))
	for i, l := range result.Listings {
		printListing(i+1, l)
	}
}

func printListing(n int, l listings.Listing) {
	fmt.Printf("%d. %s - ₦%s [%s]\n", n, l.Title, humanize.Comma(int64(l.Price)), l.Key())
	if l.Location != "" {
		fmt.Printf("   %s", l.Location)
		if l.Bedrooms > 0 {
			fmt.Printf(", %d bed", l.Bedrooms)
		}
		fmt.Println()
	}
}

func printJSON(v any) {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonBytes))
}

func fail(status listings.Status, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	case status == listings.StatusEmpty:
		fmt.Fprintln(os.Stderr, "Error: listing not found")
	default:
		fmt.Fprintf(os.Stderr, "Error: request %s\n", status)
	}
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
