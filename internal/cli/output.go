package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsHost       bool   `json:"isHost"`
	IsGuest      bool   `json:"isGuest"`
	IsEliminated bool   `json:"isEliminated"`
	IsConnected  bool   `json:"isConnected"`
}

// Room response type
type Room struct {
	ID           string   `json:"id"`
	HostName     string   `json:"hostName"`
	Status       string   `json:"status"`
	MaxPlayers   int      `json:"maxPlayers"`
	PlayerCount  int      `json:"playerCount"`
	Players      []Player `json:"players"`
	CanStartGame bool     `json:"canStartGame"`
	CanJoin      bool     `json:"canJoin"`
}

// HealthResult response type
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)
	fmt.Printf("Host: %s\n", r.HostName)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Players (%d/%d):\n", r.PlayerCount, r.MaxPlayers)
	for _, p := range r.Players {
		tags := ""
		if p.IsHost {
			tags += " [host]"
		}
		if p.IsEliminated {
			tags += " [eliminated]"
		}
		if !p.IsConnected {
			tags += " [disconnected]"
		}
		fmt.Printf("  - %s%s\n", p.Name, tags)
	}
	if r.CanJoin {
		fmt.Println("Joinable: yes")
	} else {
		fmt.Println("Joinable: no")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
