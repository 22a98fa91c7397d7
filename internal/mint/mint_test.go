package mint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMintSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/mints" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		if req.OrderNo != "DF1" || req.Recipient != "0xabc" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"signature": "sig_abc",
			"token_id":  "42",
		})
	}))
	defer server.Close()

	client := New(Options{Enabled: true, BaseURL: server.URL, APIKey: "key_test"})
	result, err := client.Mint(context.Background(), Request{
		OrderNo:       "DF1",
		CollectibleID: 7,
		Recipient:     "0xabc",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if result.Signature != "sig_abc" || result.TokenID != "42" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if gotAuth != "Bearer key_test" {
		t.Fatalf("unexpected authorization header: %s", gotAuth)
	}
}

func TestMintRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient funds"})
	}))
	defer server.Close()

	client := New(Options{Enabled: true, BaseURL: server.URL})
	_, err := client.Mint(context.Background(), Request{
		OrderNo:       "DF1",
		CollectibleID: 7,
		Recipient:     "0xabc",
	})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestMintMissingSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := New(Options{Enabled: true, BaseURL: server.URL})
	_, err := client.Mint(context.Background(), Request{
		OrderNo:       "DF1",
		CollectibleID: 7,
		Recipient:     "0xabc",
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

func TestMintDisabled(t *testing.T) {
	client := New(Options{Enabled: false})
	if _, err := client.Mint(context.Background(), Request{
		OrderNo:       "DF1",
		CollectibleID: 7,
		Recipient:     "0xabc",
	}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected disabled, got %v", err)
	}

	// an enabled flag without a base url still counts as disabled
	client = New(Options{Enabled: true})
	if client.Enabled() {
		t.Fatalf("expected client without base url to report disabled")
	}
}
