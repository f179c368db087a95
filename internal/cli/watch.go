package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var name string

	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Join a room over WebSocket and stream its events",
		Long: `Connect to the server's WebSocket endpoint, join the room, and
print every event the room broadcasts.

Events include:
  - player-joined: You joined the room
  - room-updated: Room state changed
  - game-started: A game has started
  - dice-rolled: A player rolled
  - game-finished: The game ended
  - new-message: Chat message

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], name, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&name, "name", "observer", "Display name to join under")

	return cmd
}

// wireEvent is the framing for events in both directions
type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func watchRoom(code, name string, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join, _ := json.Marshal(map[string]any{
		"roomId":     code,
		"playerName": name,
		"isGuest":    true,
	})
	if err := conn.WriteJSON(wireEvent{Type: "join-room", Data: join}); err != nil {
		return fmt.Errorf("join failed: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Connected to room %s as %s\n", code, name)
	}

	// Close the socket when interrupted so the read loop unblocks
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var evt wireEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printEvent(evt, jsonOutput)
	}
}

func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String(), nil
}

func printEvent(evt wireEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(evt)
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	displayData := string(evt.Data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	displayData = strings.ReplaceAll(displayData, "\n", " ")
	fmt.Printf("[%s] %s: %s\n", timestamp, evt.Type, displayData)
}
