package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/fpang/daily-panda/internal/chat"
	"github.com/fpang/daily-panda/internal/pipeline"
	"github.com/fpang/daily-panda/internal/storage"
)

type stubText struct{ reply string }

func (s stubText) GenerateText(ctx context.Context, req chat.TextRequest) (string, error) {
	return s.reply, nil
}

type stubImage struct {
	data []byte
	err  error
}

func (s stubImage) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return s.data, s.err
}

func TestRunUsesScheduledDate(t *testing.T) {
	store := storage.NewMemoryStore()
	d := dependencies{
		text:  stubText{reply: "[1928: Mickey Mouse debuts, New York]\nA whimsical watercolor painting of a panda whistling at a steamboat wheel."},
		image: stubImage{data: []byte("\x89PNG\r\n\x1a\n")},
		store: store,
	}
	event := events.CloudWatchEvent{
		ID:         "evt-1",
		DetailType: "Scheduled Event",
		Time:       time.Date(2025, time.November, 18, 8, 0, 0, 0, time.UTC),
	}

	resp, err := run(context.Background(), d, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Date != "2025-11-18" {
		t.Errorf("expected scheduled date, got %s", resp.Date)
	}
	if resp.Entry != "[1928: Mickey Mouse debuts, New York]" {
		t.Errorf("unexpected entry %q", resp.Entry)
	}
	if _, err := store.Read(context.Background(), "images/panda_2025-11-18.png"); err != nil {
		t.Errorf("dated image missing: %v", err)
	}
	if len(resp.Keys) != 4 {
		t.Errorf("expected 4 artifact keys, got %v", resp.Keys)
	}
}

func TestRunPropagatesFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	d := dependencies{
		text:  stubText{reply: "A panda."},
		image: stubImage{err: errors.New("no image data returned from the API")},
		store: store,
	}

	resp, err := run(context.Background(), d, events.CloudWatchEvent{})
	if !errors.Is(err, pipeline.ErrUpstreamRequest) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if resp.RunID == "" {
		t.Error("failed runs should still report a run ID")
	}
	if len(store.Keys()) != 0 {
		t.Errorf("nothing should be written, got %v", store.Keys())
	}
}
