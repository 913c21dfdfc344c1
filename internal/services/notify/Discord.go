package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"StockSignalBot/internal/models"
)

// Notification is the payload emitted for one fired signal.
type Notification struct {
	Symbol     string
	Direction  models.Direction
	Trigger    models.PatternKind
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Timestamp  time.Time
}

// Notifier delivers signal notifications. Implementations must be safe to
// call with a disabled configuration; the scan loop checks IsEnabled first.
type Notifier interface {
	Send(n *Notification) error
	IsEnabled() bool
}

const (
	colorBuy  = 0x00FF00
	colorSell = 0xFF0000
)

// DiscordNotifier posts signal embeds to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a notifier for the given webhook URL. An empty
// URL makes the notifier disabled.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DiscordNotifier) IsEnabled() bool {
	return d.webhookURL != ""
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Fields      []embedField `json:"fields"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// Send posts one signal embed. A non-2xx response is an error.
func (d *DiscordNotifier) Send(n *Notification) error {
	if !d.IsEnabled() {
		return nil
	}

	color := colorBuy
	if n.Direction == models.DirectionSell {
		color = colorSell
	}

	e := embed{
		Title:       fmt.Sprintf("%s - %s signal", n.Symbol, n.Direction),
		Description: fmt.Sprintf("Trigger: %s", n.Trigger),
		Color:       color,
		Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
		Fields: []embedField{
			{Name: "Entry", Value: fmt.Sprintf("%.2f", n.Entry), Inline: true},
			{Name: "Stop Loss", Value: fmt.Sprintf("%.2f", n.StopLoss), Inline: true},
			{Name: "Take Profit", Value: fmt.Sprintf("%.2f", n.TakeProfit), Inline: true},
		},
	}

	body, err := json.Marshal(webhookPayload{Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := d.client.Post(d.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
