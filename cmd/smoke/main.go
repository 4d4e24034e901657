package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

// Smoke run against a live server:
//
//	SMOKE_BASE_URL=http://localhost:3000 SMOKE_ADMIN_EMAIL=... SMOKE_ADMIN_PASSWORD=... go run ./cmd/smoke

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

var client = &http.Client{Timeout: 15 * time.Second}

func sendRequest(method, url, token string, body interface{}) (*http.Response, *envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp, &env, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	baseURL := getenv("SMOKE_BASE_URL", "http://localhost:3000")
	api := baseURL + "/api"
	failed := false

	step := func(title string, expect int, method, url, token string, body interface{}) *envelope {
		color.Yellow("\n%s", title)
		resp, env, err := sendRequest(method, url, token, body)
		if err != nil {
			color.Red("Failed: %v", err)
			failed = true
			return nil
		}
		if resp.StatusCode != expect {
			color.Red("Status: %s (expected %d) %s", resp.Status, expect, env.Message)
			failed = true
			return env
		}
		color.Green("Status: %s", resp.Status)
		return env
	}

	color.Cyan("🚀 Starting Blog Autowriter API smoke test\n")

	step("1. Health", http.StatusOK, http.MethodGet, baseURL+"/health", "", nil)
	step("2. Naver authorize URL", http.StatusOK, http.MethodGet, api+"/auth/naver/url", "", nil)
	step("3. Profile without session is rejected", http.StatusUnauthorized, http.MethodGet, api+"/profile", "", nil)
	step("4. Garbage credential is rejected", http.StatusUnauthorized, http.MethodPost, api+"/auth/session", "", map[string]string{"credential": "not-a-token"})

	email, password := os.Getenv("SMOKE_ADMIN_EMAIL"), os.Getenv("SMOKE_ADMIN_PASSWORD")
	if email == "" || password == "" {
		color.Magenta("\nSkipping admin steps (SMOKE_ADMIN_EMAIL / SMOKE_ADMIN_PASSWORD not set)")
	} else {
		env := step("5. Admin login", http.StatusOK, http.MethodPost, api+"/admin/login", "", map[string]string{"email": email, "password": password})
		var sess struct {
			Token string `json:"token"`
		}
		if env != nil {
			_ = json.Unmarshal(env.Data, &sess)
		}
		if sess.Token != "" {
			step("6. Admin profile list", http.StatusOK, http.MethodGet, api+"/admin/profiles?page=1&limit=5", sess.Token, nil)
			step("7. Admin pending messages", http.StatusOK, http.MethodGet, api+"/admin/messages?status=pending", sess.Token, nil)
			step("8. Admin logs", http.StatusOK, http.MethodGet, api+"/admin/logs?limit=5", sess.Token, nil)
		}
	}

	if failed {
		color.Red("\n❌ Smoke test finished with failures")
		os.Exit(1)
	}
	fmt.Println()
	color.Green("✅ Smoke test passed")
}
