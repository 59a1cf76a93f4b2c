// Package main - observer
// Connects to a running server's WebSocket feed, prints tick news and can
// drive the calendar by sending ADVANCE_DAY commands.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
	"github.com/MRamiBalles/Legislatura/internal/network"
)

// Config for the observer.
type Config struct {
	ServerURL string
	Advance   int
	Interval  time.Duration
	Duration  time.Duration
}

// Stats tracks what the feed delivered.
type Stats struct {
	Ticks    int64
	Events   int64
	Acks     int64
	Errors   int64
	Commands int64
}

// feedMessage is network.Message with the payload left raw.
type feedMessage struct {
	Type    string            `json:"type"`
	Date    calendar.GameDate `json:"date"`
	Command string            `json:"command"`
	Payload json.RawMessage   `json:"payload"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	advance := flag.Int("advance", 0, "Number of ADVANCE_DAY commands to send")
	interval := flag.Duration("interval", time.Second, "Delay between commands")
	duration := flag.Duration("duration", time.Minute, "How long to watch")
	flag.Parse()

	config := Config{ServerURL: *serverURL, Advance: *advance, Interval: *interval, Duration: *duration}

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stats := &Stats{}
	if err := watch(ctx, config, stats); err != nil {
		log.Printf("observer: %v", err)
	}
	printResults(stats)
}

func watch(ctx context.Context, config Config, stats *Stats) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg feedMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			handle(msg, stats)
		}
	}()

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()
	sent := 0
	for {
		select {
		case <-ctx.Done():
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			<-done
			return nil
		case <-done:
			return fmt.Errorf("connection closed by server")
		case <-ticker.C:
			if sent >= config.Advance {
				continue
			}
			if err := conn.WriteJSON(network.Command{Type: network.CommandAdvanceDay}); err != nil {
				return err
			}
			sent++
			atomic.AddInt64(&stats.Commands, 1)
		}
	}
}

func handle(msg feedMessage, stats *Stats) {
	switch msg.Type {
	case network.MessageTick:
		atomic.AddInt64(&stats.Ticks, 1)
		var tick network.TickSummary
		if err := json.Unmarshal(msg.Payload, &tick); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			return
		}
		fmt.Printf("[%s] %d news, %d bill updates\n", msg.Date.String(), len(tick.News), len(tick.BillUpdates))
		for _, n := range tick.News {
			fmt.Printf("    %-14s %s\n", n.Type, n.Headline)
		}
	case network.MessageEvent:
		atomic.AddInt64(&stats.Events, 1)
	case network.MessageAck:
		atomic.AddInt64(&stats.Acks, 1)
	case network.MessageError:
		atomic.AddInt64(&stats.Errors, 1)
		fmt.Printf("error for %s: %s\n", msg.Command, string(msg.Payload))
	}
}

func printResults(stats *Stats) {
	fmt.Println("\n=========================================")
	fmt.Println("OBSERVER RESULTS")
	fmt.Println("=========================================")
	fmt.Printf("Commands sent: %d\n", atomic.LoadInt64(&stats.Commands))
	fmt.Printf("Ticks:         %d\n", atomic.LoadInt64(&stats.Ticks))
	fmt.Printf("Events:        %d\n", atomic.LoadInt64(&stats.Events))
	fmt.Printf("Acks:          %d\n", atomic.LoadInt64(&stats.Acks))
	fmt.Printf("Errors:        %d\n", atomic.LoadInt64(&stats.Errors))
}
