package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rvemuri2/helix-backend/internal/config"
	"github.com/rvemuri2/helix-backend/pkg/events"
	pktNats "github.com/rvemuri2/helix-backend/pkg/nats"

	"github.com/fatih/color"
)

// Tails the sequence event stream. Handy for checking that mutations make it
// onto JetStream without wiring up a websocket client.
func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("helix.>", "helix-event-tailer", func(ctx context.Context, event events.Event) error {
		color.Yellow("[%s] %s", event.Timestamp().Format("15:04:05"), event.EventType())
		color.Green("  %v", event.Payload())
		return nil
	})
	if err != nil {
		log.Fatalf("Error: Failed to subscribe: %v", err)
	}

	color.Cyan("Listening for sequence events on helix.> (Ctrl+C to stop)")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
