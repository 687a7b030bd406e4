package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"relay-llm/internal/llm"
)

type mockPoster struct {
	calls    int
	channel  string
	threadTS string
	text     string
	err      error
}

func (m *mockPoster) PostReply(_ context.Context, channelID, threadTS, text string) error {
	m.calls++
	m.channel = channelID
	m.threadTS = threadTS
	m.text = text
	return m.err
}

func actionableEvent() SlackEvent {
	return SlackEvent{
		Kind:      SlackEventMessage,
		InnerType: "app_mention",
		EventID:   "Ev1",
		Channel:   "C1",
		ThreadTS:  "1.5",
		Text:      "<@UBOT> hello there",
	}
}

func TestSlackRelayHandle_PostsReply(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Response: "hi!"}
	poster := &mockPoster{}
	relay := NewSlackRelay(nil, NewExchangeService(nil, client, repo, "PROMPT", 0), poster, nil)

	handled, err := relay.Handle(context.Background(), actionableEvent())
	if err != nil || !handled {
		t.Fatalf("expected handled, got handled=%v err=%v", handled, err)
	}
	if client.Last[len(client.Last)-1].Content != "hello there" {
		t.Fatalf("expected mention stripped, got %+v", client.Last)
	}
	if poster.calls != 1 || poster.channel != "C1" || poster.threadTS != "1.5" || poster.text != "hi!" {
		t.Fatalf("unexpected post %+v", poster)
	}
	if len(repo.stored) != 2 {
		t.Fatalf("expected exchange persisted, got %d rows", len(repo.stored))
	}
}

func TestSlackRelayHandle_BotEventTouchesNothing(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Response: "hi!"}
	poster := &mockPoster{}
	relay := NewSlackRelay(nil, NewExchangeService(nil, client, repo, "PROMPT", 0), poster, nil)

	ev := actionableEvent()
	ev.BotID = "B1"
	handled, err := relay.Handle(context.Background(), ev)
	if err != nil || handled {
		t.Fatalf("expected ignored, got handled=%v err=%v", handled, err)
	}
	if repo.listCalls != 0 || client.Calls != 0 || poster.calls != 0 {
		t.Fatalf("expected no side effects, got list=%d llm=%d post=%d", repo.listCalls, client.Calls, poster.calls)
	}
}

func TestSlackRelayHandle_PostFailureStillHandled(t *testing.T) {
	repo := &mockMessageRepo{}
	poster := &mockPoster{err: errors.New("channel_not_found")}
	relay := NewSlackRelay(nil, NewExchangeService(nil, &llm.MockClient{Response: "hi!"}, repo, "PROMPT", 0), poster, nil)

	handled, err := relay.Handle(context.Background(), actionableEvent())
	if err != nil || !handled {
		t.Fatalf("expected handled despite post failure, got handled=%v err=%v", handled, err)
	}
}

func TestSlackRelayHandle_PersistFailureSkipsPost(t *testing.T) {
	repo := &mockMessageRepo{appendErr: errors.New("locked")}
	poster := &mockPoster{}
	dedup := NewMemoryEventDeduper(time.Minute)
	relay := NewSlackRelay(nil, NewExchangeService(nil, &llm.MockClient{Response: "hi!"}, repo, "PROMPT", 0), poster, dedup)

	_, err := relay.Handle(context.Background(), actionableEvent())
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if poster.calls != 0 {
		t.Fatalf("expected no post when persistence fails")
	}
	ok, _ := dedup.Claim(context.Background(), "Ev1")
	if !ok {
		t.Fatalf("expected claim released after failure")
	}
}

func TestSlackRelayHandle_DuplicateDelivery(t *testing.T) {
	repo := &mockMessageRepo{}
	client := &llm.MockClient{Response: "hi!"}
	poster := &mockPoster{}
	relay := NewSlackRelay(nil, NewExchangeService(nil, client, repo, "PROMPT", 0), poster, NewMemoryEventDeduper(time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := relay.Handle(context.Background(), actionableEvent()); err != nil {
			t.Fatalf("delivery %d: unexpected error %v", i, err)
		}
	}
	if client.Calls != 1 || poster.calls != 1 || len(repo.stored) != 2 {
		t.Fatalf("expected single exchange, got llm=%d post=%d rows=%d", client.Calls, poster.calls, len(repo.stored))
	}
}
