package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkor/tripsettle/internal/adapter/http/dto"
)

func TestTripLifecycleOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)

	body, _ := json.Marshal(dto.CreateTripRequest{
		Name:         "Alps 2026",
		BaseCurrency: "EUR",
		Participants: []dto.ParticipantItem{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
			{ID: "carol", Name: "Carol"},
		},
	})

	resp, err := http.Post(stack.Server.URL+"/api/v1/trips", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create trip request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created dto.TripResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if created.ID == "" || created.LedgerVersion != 0 || len(created.Participants) != 3 {
		t.Fatalf("unexpected trip: %+v", created)
	}

	// Fetch it back
	getResp, err := http.Get(stack.Server.URL + "/api/v1/trips/" + created.ID)
	if err != nil {
		t.Fatalf("get trip request failed: %v", err)
	}
	defer getResp.Body.Close()

	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.StatusCode)
	}

	var fetched dto.TripResponse
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if fetched.ID != created.ID || fetched.BaseCurrency != "EUR" {
		t.Fatalf("fetched trip mismatch: %+v", fetched)
	}

	// And in the listing
	listResp, err := http.Get(stack.Server.URL + "/api/v1/trips")
	if err != nil {
		t.Fatalf("list trips request failed: %v", err)
	}
	defer listResp.Body.Close()

	var list dto.ListTripsResponse
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(list.Trips) != 1 || list.Trips[0].ID != created.ID {
		t.Fatalf("expected single trip in listing, got %+v", list.Trips)
	}
}

func TestCreateTripValidationOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)

	cases := []struct {
		name string
		req  dto.CreateTripRequest
	}{
		{
			name: "missing name",
			req: dto.CreateTripRequest{
				BaseCurrency: "EUR",
				Participants: []dto.ParticipantItem{{ID: "alice", Name: "Alice"}},
			},
		},
		{
			name: "unsupported currency",
			req: dto.CreateTripRequest{
				Name:         "Nowhere",
				BaseCurrency: "XXX",
				Participants: []dto.ParticipantItem{{ID: "alice", Name: "Alice"}},
			},
		},
		{
			name: "no participants",
			req: dto.CreateTripRequest{
				Name:         "Nowhere",
				BaseCurrency: "EUR",
			},
		},
		{
			name: "duplicate participants",
			req: dto.CreateTripRequest{
				Name:         "Nowhere",
				BaseCurrency: "EUR",
				Participants: []dto.ParticipantItem{
					{ID: "alice", Name: "Alice"},
					{ID: "alice", Name: "Also Alice"},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			resp, err := http.Post(stack.Server.URL+"/api/v1/trips", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}
