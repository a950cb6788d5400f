// Command snekstats summarises recorded games.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/brensch/snek3d/logging"
	"github.com/brensch/snek3d/stats"
)

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	roots := flag.String("roots", getEnvOrDefault("SNEK_RECORD_DIR", "data/recordings"), "Comma separated recording directories or parquet globs")
	limit := flag.Int("limit", 20, "Games to list; 0 lists all")
	logLevel := flag.String("log-level", getEnvOrDefault("SNEK_LOG_LEVEL", "warn"), "Log level")
	flag.Parse()

	logger, err := logging.New(os.Stderr, "text", *logLevel)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	db, err := stats.Open(strings.Split(*roots, ","), logger)
	if err != nil {
		log.Fatalf("Failed to open recordings: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	games, err := db.Summaries(ctx)
	if err != nil {
		log.Fatalf("Failed to summarise games: %v", err)
	}
	causes, err := db.DeathCauses(ctx)
	if err != nil {
		log.Fatalf("Failed to count deaths: %v", err)
	}

	fmt.Printf("%d games\n\n", len(games))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GAME\tSOURCE\tBOARD\tTURNS\tROUNDS\tMAX LEN\tEATEN\tDEATHS")
	for i, g := range games {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%d\t%d\t%d\t%d\n", g.GameID, g.Source, g.Width, g.Height, g.Turns, g.Rounds, g.MaxLength, g.Eaten, g.Deaths)
	}
	w.Flush()

	if len(causes) > 0 {
		keys := make([]string, 0, len(causes))
		for k := range causes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("\nDeaths by cause:")
		for _, k := range keys {
			fmt.Printf("  %-10s %d\n", k, causes[k])
		}
	}
}
