package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

type jwtResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

func main() {
	fmt.Println("Starting pipeline smoke test...")

	token, err := getJWTToken()
	if err != nil {
		log.Fatalf("Failed to get JWT token: %v", err)
	}
	fmt.Printf("JWT token obtained: %s...\n", token[:20])

	if err := generateDialog(token); err != nil {
		log.Fatalf("Failed to generate dialog: %v", err)
	}

	if err := exportDialog(token); err != nil {
		log.Fatalf("Failed to export dialog: %v", err)
	}

	fmt.Println("Pipeline smoke test completed successfully!")
}

func getJWTToken() (string, error) {
	req, err := http.NewRequest("POST", baseURL+"/api/v1/auth/token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("X-API-Key", os.Getenv("API_KEY"))
	req.Header.Set("X-API-Secret", os.Getenv("API_SECRET"))
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("auth failed with status %d: %s", resp.StatusCode, string(body))
	}

	var parsed jwtResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode token response: %v", err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("token not found in response")
	}
	return parsed.Token, nil
}

func generateDialog(token string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"text":         "某市发现超过五十万辆共享单车长期闲置，运营企业陷入维护困境，政府考虑引入电子围栏管理。",
		"style":        "casual",
		"participants": 2,
	})

	req, err := http.NewRequest("POST", baseURL+"/api/v1/podcast/generate", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 120 * time.Second}
	fmt.Println("Requesting script generation...")

	startTime := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	fmt.Printf("Request completed in %v\n", time.Since(startTime))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	fmt.Printf("Response Status: %d\n", resp.StatusCode)
	fmt.Printf("Response Body: %s\n", string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation failed with status %d", resp.StatusCode)
	}
	return nil
}

func exportDialog(token string) error {
	req, err := http.NewRequest("GET", baseURL+"/api/v1/podcast/export/text", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	fmt.Printf("Export Status: %d\n", resp.StatusCode)
	fmt.Printf("Exported text:\n%s\n", string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export failed with status %d", resp.StatusCode)
	}
	return nil
}
