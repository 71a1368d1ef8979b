package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/neurogym/internal/store"
)

func openTestEvents(t *testing.T) store.EventRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.EventRepo()
}

func TestRecordingProvider_StoresSuccess(t *testing.T) {
	events := openTestEvents(t)
	mock := NewMockProvider(MockResponse{
		Content: okReply.Content,
		Usage:   usage(120, 40),
	})
	p := WithRecording(mock, ProviderMock, events, nil)

	ctx := WithPurpose(context.Background(), PurposeWordPairs)
	if _, err := p.Generate(ctx, Prompt("You write word pairs.", "Two kitchen pairs.", pairsSchema(), 200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := events.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	e := got[0]
	if !e.Success || e.Purpose != PurposeWordPairs || e.Provider != ProviderMock || e.Model != "mock" {
		t.Errorf("event = %+v", e.LLMRequestEventData)
	}
	if e.InputTokens != 120 || e.OutputTokens != 40 {
		t.Errorf("tokens = %d/%d, want 120/40", e.InputTokens, e.OutputTokens)
	}
	for _, part := range []string{"[system]", "[user]\nTwo kitchen pairs.", "[schema: test_word_pairs]"} {
		if !strings.Contains(e.RequestBody, part) {
			t.Errorf("request body missing %q:\n%s", part, e.RequestBody)
		}
	}
	if e.ResponseBody != string(okReply.Content) {
		t.Errorf("response body = %q", e.ResponseBody)
	}
}

func TestRecordingProvider_StoresAndLogsFailure(t *testing.T) {
	events := openTestEvents(t)
	core, logs := observer.New(zapcore.WarnLevel)
	p := WithRecording(NewMockProvider(downReply), ProviderMock, events, zap.New(core))

	_, err := p.Generate(context.Background(), Prompt("", "pairs", nil, 10))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %v, want ErrProviderUnavailable passed through", err)
	}

	got, _ := events.QueryLLMEvents(context.Background(), store.QueryOpts{})
	if len(got) != 1 || got[0].Success {
		t.Fatalf("events = %+v, want one failed event", got)
	}
	if got[0].Purpose != PurposeUnknown {
		t.Errorf("purpose = %q, want %q", got[0].Purpose, PurposeUnknown)
	}
	if !strings.Contains(got[0].ErrorMessage, "connection refused") {
		t.Errorf("error message = %q", got[0].ErrorMessage)
	}
	if logs.FilterMessage("llm request failed").Len() != 1 {
		t.Errorf("expected one failure log, got %v", logs.All())
	}
}

func TestRecordingProvider_WithoutStore(t *testing.T) {
	p := WithRecording(NewMockProvider(okReply), ProviderMock, nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}
