package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type APIResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Field   string          `json:"field,omitempty"`
}

type StopwatchState struct {
	State     string `json:"state"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Running   bool   `json:"running"`
	Display   string `json:"display"`
}

type WebSocketMessage struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

var (
	serverURL string
	wsURL     string
	client    = &http.Client{Timeout: 5 * time.Second}
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "base URL of a running calculators server")
	flag.Parse()

	serverURL = strings.TrimRight(*addr, "/")
	wsURL = "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"

	fmt.Println("🚀 Starting AquaSmart Calculators Smoke Test")
	fmt.Println(strings.Repeat("=", 60))

	if !isServerRunning() {
		log.Fatal("❌ Server is not running. Please start the server first with: go run ./cmd/server")
	}
	fmt.Println("✅ Server is running")

	steps := []struct {
		name string
		run  func() error
	}{
		{"Pure SDI calculation", testPureSDI},
		{"SDI validation errors", testSDIValidation},
		{"Stopwatch over WebSocket", testStopwatchWebSocket},
		{"SDI session calculation", testSDISession},
		{"Scaling indices and trend", testScalingHistory},
	}

	for i, step := range steps {
		fmt.Printf("\n📋 Test %d: %s\n", i+1, step.name)
		if err := step.run(); err != nil {
			log.Fatalf("❌ Test failed: %s: %v", step.name, err)
		}
	}

	fmt.Println("\n🎉 All tests passed successfully!")
}

func isServerRunning() bool {
	resp, err := client.Get(serverURL + "/api/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func call(method, path string, payload interface{}) (int, *APIResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, &apiResp, nil
}

func expectOK(method, path string, payload interface{}, out interface{}) error {
	status, resp, err := call(method, path, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK || !resp.Success {
		return fmt.Errorf("%s %s: expected status 200, got %d: %s", method, path, status, resp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", path, err)
		}
	}
	return nil
}

func testPureSDI() error {
	var result struct {
		SDI            float64 `json:"sdi"`
		Band           string  `json:"band"`
		Interpretation string  `json:"interpretation"`
	}
	err := expectOK(http.MethodPost, "/api/v1/sdi/calculate",
		map[string]string{"ti": "30.5", "tf": "45.2", "total_duration": "15"}, &result)
	if err != nil {
		return err
	}
	if result.SDI != 2.17 || result.Band != "low" {
		return fmt.Errorf("expected SDI 2.17 (low), got %.2f (%s)", result.SDI, result.Band)
	}

	fmt.Printf("   ✅ SDI=%.2f: %s\n", result.SDI, result.Interpretation)
	return nil
}

func testSDIValidation() error {
	status, resp, err := call(http.MethodPost, "/api/v1/sdi/calculate",
		map[string]string{"ti": "45.2", "tf": "30.5", "total_duration": "15"})
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest || resp.Code != "ordering_violation" {
		return fmt.Errorf("expected 400 ordering_violation, got %d %s", status, resp.Code)
	}

	fmt.Printf("   ✅ Ordering violation rejected: %s\n", resp.Error)
	return nil
}

func testStopwatchWebSocket() error {
	fmt.Printf("   🔌 Connecting to WebSocket: %s\n", wsURL)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	defer conn.Close()

	messages := make(chan WebSocketMessage, 64)
	go func() {
		defer close(messages)
		for {
			var msg WebSocketMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			messages <- msg
		}
	}()

	expectOK(http.MethodPost, "/api/v1/stopwatch/reset", nil, nil)
	if err := expectOK(http.MethodPost, "/api/v1/stopwatch/start", nil, nil); err != nil {
		return err
	}

	ticks := 0
	timeout := time.After(3 * time.Second)
	for ticks < 3 {
		select {
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("websocket closed early")
			}
			if msg.Type == "stopwatch_tick" {
				var state StopwatchState
				json.Unmarshal(msg.Data, &state)
				ticks++
				fmt.Printf("   ⏱️  Tick %d: %s\n", ticks, state.Display)
			}
		case <-timeout:
			return fmt.Errorf("received %d stopwatch ticks within timeout", ticks)
		}
	}

	var recorded struct {
		Recorded float64 `json:"recorded_seconds"`
	}
	if err := expectOK(http.MethodPost, "/api/v1/stopwatch/record-ti", nil, &recorded); err != nil {
		return err
	}
	time.Sleep(300 * time.Millisecond)
	if err := expectOK(http.MethodPost, "/api/v1/stopwatch/record-tf", nil, nil); err != nil {
		return err
	}
	if err := expectOK(http.MethodPost, "/api/v1/stopwatch/stop", nil, nil); err != nil {
		return err
	}

	fmt.Printf("   ✅ Stopwatch ticked and recorded Ti=%.1fs\n", recorded.Recorded)
	return nil
}

func testSDISession() error {
	if err := expectOK(http.MethodPut, "/api/v1/sdi/session/info", map[string]string{
		"sample_source": "Smoke test feed",
		"operator":      "smoketest",
		"test_date":     time.Now().Format("2006-01-02"),
		"pressure_psi":  "30",
		"temperature_c": "25",
	}, nil); err != nil {
		return err
	}
	if err := expectOK(http.MethodPut, "/api/v1/sdi/session/timing",
		map[string]string{"ti": "25", "tf": "100", "total_duration": "15"}, nil); err != nil {
		return err
	}

	var report struct {
		ID     string `json:"id"`
		Result struct {
			SDI  float64 `json:"sdi"`
			Band string  `json:"band"`
		} `json:"result"`
	}
	if err := expectOK(http.MethodPost, "/api/v1/sdi/session/calculate", nil, &report); err != nil {
		return err
	}
	// Exactly 5 is still moderate
	if report.Result.SDI != 5 || report.Result.Band != "moderate" {
		return fmt.Errorf("expected SDI 5 (moderate), got %.2f (%s)", report.Result.SDI, report.Result.Band)
	}

	resp, err := client.Get(serverURL + "/api/v1/export/sdi-report.pdf")
	if err != nil {
		return fmt.Errorf("failed to download report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		return fmt.Errorf("expected PDF report, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	fmt.Printf("   ✅ Report %s: SDI=%.2f (%s)\n", report.ID, report.Result.SDI, report.Result.Band)
	return expectOK(http.MethodPost, "/api/v1/sdi/session/reset", nil, nil)
}

func testScalingHistory() error {
	input := map[string]string{"tds": "500", "temp": "25", "cah": "300", "malk": "150", "ph": "7.8"}

	var scaling struct {
		Result struct {
			LSI        float64           `json:"lsi"`
			RSI        float64           `json:"rsi"`
			PSI        float64           `json:"psi"`
			Conditions map[string]string `json:"conditions"`
		} `json:"result"`
		History []json.RawMessage `json:"history"`
	}
	for i := 0; i < 6; i++ {
		if err := expectOK(http.MethodPost, "/api/v1/scaling/calculate", input, &scaling); err != nil {
			return err
		}
	}

	if len(scaling.History) != 5 {
		return fmt.Errorf("expected trend of 5 samples, got %d", len(scaling.History))
	}
	fmt.Printf("   📈 LSI=%.2f (%s), RSI=%.2f (%s), PSI=%.2f (%s)\n",
		scaling.Result.LSI, scaling.Result.Conditions["lsi"],
		scaling.Result.RSI, scaling.Result.Conditions["rsi"],
		scaling.Result.PSI, scaling.Result.Conditions["psi"])
	fmt.Printf("   ✅ Trend keeps the last %d samples\n", len(scaling.History))
	return nil
}
