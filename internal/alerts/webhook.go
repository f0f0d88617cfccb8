package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// deliver sends webhook notifications for ev to all configured targets.
// Errors are logged but do not affect the caller.
func (e *Engine) deliver(ev Event) {
	for _, wh := range e.webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = e.sendSlack(url, ev)
		case "teams":
			err = e.sendTeams(url, ev)
		case "http":
			err = e.sendHTTP(url, ev)
		default:
			slog.Warn("alerts: unknown webhook type — skipping", "type", wh.Type)
			continue
		}

		if err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"alert", ev.Alert.ID,
				"err", err,
			)
		} else {
			slog.Debug("alerts: webhook delivered",
				"type", wh.Type,
				"alert", ev.Alert.ID,
				"event", ev.Type,
			)
		}
	}
}

func (e *Engine) sendSlack(url string, ev Event) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("*%s* [%s] %s", eventLabel(ev.Type), ev.Alert.Severity, ev.Alert.Message),
	})
	return e.post(url, body)
}

func (e *Engine) sendTeams(url string, ev Event) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": severityColor(ev.Alert.Severity),
		"summary":    string(ev.Alert.Kind),
		"title":      fmt.Sprintf("Binwatch Alert %s: %s", eventLabel(ev.Type), ev.Alert.BinID),
		"text":       ev.Alert.Message,
	}
	body, _ := json.Marshal(payload)
	return e.post(url, body)
}

func (e *Engine) sendHTTP(url string, ev Event) error {
	body, _ := json.Marshal(ev)
	return e.post(url, body)
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func eventLabel(t EventType) string {
	switch t {
	case EventCreated:
		return "FIRED"
	case EventEscalated:
		return "ESCALATED"
	case EventResolved:
		return "RESOLVED"
	default:
		return string(t)
	}
}

func severityColor(s Severity) string {
	switch s {
	case SeverityCritical:
		return "FF4F6A"
	default:
		return "FFAB40"
	}
}
