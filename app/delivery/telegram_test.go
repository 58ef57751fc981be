package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTelegramDestination_Send(t *testing.T) {
	var gotPath, gotChat, gotText, gotMode string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		gotMode = r.PostForm.Get("parse_mode")
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL+"/", "123:abc", "Markdown")
	dest := NewTelegramDestination(client, "-100200", true)

	if err := dest.Send(context.Background(), Message{Text: "*hello*"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("Expected bot endpoint, got %s", gotPath)
	}
	if gotChat != "-100200" {
		t.Errorf("Expected chat -100200, got %s", gotChat)
	}
	if gotText != "*hello*" {
		t.Errorf("Expected text *hello*, got %s", gotText)
	}
	if gotMode != "Markdown" {
		t.Errorf("Expected Markdown parse mode, got %s", gotMode)
	}
	if dest.ID() != "-100200" || dest.Transport() != TransportTelegram {
		t.Errorf("Unexpected destination identity %s/%s", dest.ID(), dest.Transport())
	}
}

func TestTelegramDestination_PlainOmitsParseMode(t *testing.T) {
	hasMode := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		_, hasMode = r.PostForm["parse_mode"]
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL, "t", "Markdown")
	if err := NewTelegramDestination(client, "42", false).Send(context.Background(), Message{Text: "plain"}); err != nil {
		t.Fatal(err)
	}
	if hasMode {
		t.Error("Expected no parse_mode for plain messages")
	}
}

func TestTelegramClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL, "t", "")
	err := client.SendMessage(context.Background(), "42", "hi", "")

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("Expected *SendError, got %v", err)
	}
	if sendErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", sendErr.StatusCode)
	}
	if sendErr.RetryAfter != 5*time.Second {
		t.Errorf("Expected retry after 5s, got %s", sendErr.RetryAfter)
	}
	if !sendErr.Temporary() {
		t.Error("Expected rate limiting to be temporary")
	}
}

func TestTelegramClient_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL, "t", "")
	err := client.SendMessage(context.Background(), "42", "hi", "")

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("Expected *SendError, got %v", err)
	}
	if sendErr.Description != "Bad Request: chat not found" {
		t.Errorf("Unexpected description %q", sendErr.Description)
	}
	if sendErr.Temporary() {
		t.Error("Expected bad request to be permanent")
	}
}

func TestTelegramClient_NotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"something odd"}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL, "t", "")
	if err := client.SendMessage(context.Background(), "42", "hi", ""); err == nil {
		t.Error("Expected error when ok is false")
	}
}
