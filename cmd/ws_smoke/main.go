package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"clicker_game/internal/logger"

	"github.com/gorilla/websocket"
)

// Connects to /ws with an access token, fires a click through the REST API
// and prints every message received until timeout.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	token := flag.String("token", os.Getenv("TOKEN"), "access token (see cmd/create_test_user)")
	clicks := flag.Int("clicks", 5, "clicks to send")
	wait := flag.Duration("wait", 5*time.Second, "how long to listen")
	flag.Parse()

	if *token == "" {
		logger.Fatal("token required: -token or TOKEN env")
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, *token), nil)
	if err != nil {
		logger.Fatal("dial failed", "error", err)
	}
	defer conn.Close()

	if err := sendClick(*addr, *token, *clicks); err != nil {
		logger.Fatal("click failed", "error", err)
	}

	deadline := time.Now().Add(*wait)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			logger.Info("stopped reading", "reason", err)
			return
		}
		fmt.Println(string(msg))
	}
}

func sendClick(addr, token string, clicks int) error {
	body, _ := json.Marshal(map[string]any{
		"clicks":    clicks,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"energy":    0,
		"balance":   0,
	})
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/v1/game/click", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("click status %d", res.StatusCode)
	}
	return nil
}
