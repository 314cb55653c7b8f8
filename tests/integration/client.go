package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"skybook/internal/models"
)

const defaultBaseURL = "http://localhost:8080"

// TestClient drives a running API instance over HTTP.
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	baseURL := os.Getenv("SKYBOOK_API_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client := &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	// These tests need a live server; skip instead of failing when one is
	// not running.
	resp, err := client.HTTPClient.Get(baseURL + "/health")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", baseURL, err)
	}
	resp.Body.Close()

	return client
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response, wantStatus int) T {
	defer resp.Body.Close()

	var out T
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func (c *TestClient) CreatePassenger(t *testing.T, name string) models.Passenger {
	resp := c.makeRequest(t, "POST", "/api/passengers", models.CreatePassengerRequest{
		Name:  name,
		Email: fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
	})
	return decode[models.Passenger](t, resp, http.StatusCreated)
}

func (c *TestClient) ListFlights(t *testing.T) []models.Flight {
	resp := c.makeRequest(t, "GET", "/api/flights", nil)
	return decode[[]models.Flight](t, resp, http.StatusOK)
}

func (c *TestClient) CreateTicket(t *testing.T, flightID, seatClass string) int64 {
	resp := c.makeRequest(t, "POST", "/api/tickets", models.CreateTicketRequest{
		FlightID:  flightID,
		SeatClass: seatClass,
	})
	return decode[models.CreateTicketResponse](t, resp, http.StatusCreated).ID
}

func (c *TestClient) BookTicket(t *testing.T, ticketID, passengerID int64, amount int64) models.BookTicketResponse {
	resp := c.makeRequest(t, "POST", "/api/tickets/book", models.BookTicketRequest{
		TicketID:    ticketID,
		PassengerID: passengerID,
		Amount:      amount,
		Method:      "card",
	})
	return decode[models.BookTicketResponse](t, resp, http.StatusOK)
}

func (c *TestClient) CancelTicket(t *testing.T, ticketID int64) {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/cancel", ticketID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 cancelling ticket %d, got %d", ticketID, resp.StatusCode)
	}
}

func (c *TestClient) SeatFreed(t *testing.T, flightID, seatClass string) models.PromotionResponse {
	resp := c.makeRequest(t, "POST", "/api/inventory/seat-freed", models.SeatFreedRequest{
		FlightID:  flightID,
		SeatClass: seatClass,
	})
	return decode[models.PromotionResponse](t, resp, http.StatusOK)
}

func (c *TestClient) LoadFactor(t *testing.T, flightID string) models.LoadFactorResponse {
	resp := c.makeRequest(t, "GET", "/api/reports/load-factor/"+flightID, nil)
	return decode[models.LoadFactorResponse](t, resp, http.StatusOK)
}

func (c *TestClient) Waitlist(t *testing.T, flightID string) []models.WaitlistEntry {
	resp := c.makeRequest(t, "GET", "/api/reports/waitlist/"+flightID, nil)
	return decode[[]models.WaitlistEntry](t, resp, http.StatusOK)
}
