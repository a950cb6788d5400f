// Command snekwatch follows a running snek3d spectator stream and prints
// each board as it arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/snek3d/spectate"
	"github.com/brensch/snek3d/tui"
)

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func main() {
	url := flag.String("url", getEnvOrDefault("SNEK_SPECTATE_URL", "ws://localhost:8080/ws"), "Spectator websocket URL")
	plain := flag.Bool("plain", false, "Print one status line per frame instead of the board")
	readTimeout := flag.Duration("read-timeout", time.Minute, "Give up when no frame arrives for this long")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	styles := tui.DefaultStyles()
	cfg := spectate.DefaultFollowConfig
	cfg.ReadTimeout = *readTimeout

	err := spectate.Follow(ctx, *url, cfg, func(f spectate.Frame) error {
		status := fmt.Sprintf("turn %d round %d length %d eaten %d deaths %d", f.Turn, f.Round, len(f.Body), f.Eaten, f.Deaths)
		if f.Died {
			status += fmt.Sprintf(" died (%s)", f.Cause)
		}
		if *plain {
			fmt.Println(status)
			return nil
		}
		// Clear the screen and redraw.
		fmt.Print("\033[H\033[2J")
		fmt.Println(tui.RenderBoard(f.Snapshot(), styles))
		fmt.Println(status)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("follow %s: %v", *url, err)
	}
}
