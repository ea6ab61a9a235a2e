package refiner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PXLTCH/startup-ai/internal/config"
)

type scriptedCompleter struct {
	calls   atomic.Int32
	results []error
	text    string
}

func (s *scriptedCompleter) Complete(_ context.Context, _ Request) (string, error) {
	i := int(s.calls.Add(1)) - 1
	if i < len(s.results) && s.results[i] != nil {
		return "", s.results[i]
	}
	return s.text, nil
}

func fastRetry(max int) *RetryConfig {
	return &RetryConfig{MaxRetries: max, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestServiceRetriesRetryableErrors(t *testing.T) {
	c := &scriptedCompleter{
		results: []error{&Error{Op: "fake", Err: errors.New("busy"), Retryable: true}},
		text:    "Refined.",
	}
	svc := NewService(c, WithRetryConfig(fastRetry(2)))

	got, err := svc.Refine(context.Background(), "Q?", "a")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got != "Refined." {
		t.Errorf("Refine = %q", got)
	}
	if c.calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", c.calls.Load())
	}
}

func TestServiceStopsOnPermanentError(t *testing.T) {
	c := &scriptedCompleter{results: []error{&Error{Op: "fake", Err: errors.New("bad request")}}}
	svc := NewService(c, WithRetryConfig(fastRetry(3)))

	_, err := svc.Complete(context.Background(), Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if c.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", c.calls.Load())
	}
}

func TestServiceGivesUpAfterMaxRetries(t *testing.T) {
	busy := &Error{Op: "fake", Err: errors.New("busy"), Retryable: true}
	c := &scriptedCompleter{results: []error{busy, busy, busy, busy}}
	svc := NewService(c, WithRetryConfig(fastRetry(2)))

	_, err := svc.Complete(context.Background(), Request{})
	if !IsRetryable(err) {
		t.Errorf("final error should stay retryable, got %v", err)
	}
	if c.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", c.calls.Load())
	}
}

func TestRefineEmptyResponse(t *testing.T) {
	svc := NewService(&scriptedCompleter{text: "   "}, WithRetryConfig(fastRetry(0)))
	if _, err := svc.Refine(context.Background(), "Q?", "a"); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Refine error = %v, want ErrEmptyResponse", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"retryable", &Error{Op: "x", Err: errors.New("x"), Retryable: true}, true},
		{"permanent", &Error{Op: "x", Err: errors.New("x")}, false},
		{"canceled", &Error{Op: "x", Err: context.Canceled, Retryable: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestParseClaudeOutput(t *testing.T) {
	out, err := parseClaudeOutput([]byte(`{"type":"result","subtype":"success","result":"Sharper.","is_error":false}`))
	if err != nil {
		t.Fatalf("parseClaudeOutput: %v", err)
	}
	if out.Result != "Sharper." {
		t.Errorf("Result = %q", out.Result)
	}

	if _, err := parseClaudeOutput([]byte(`{"type":"assistant"}`)); err == nil {
		t.Error("expected error for non-result envelope")
	}
	if _, err := parseClaudeOutput(nil); err == nil {
		t.Error("expected error for empty output")
	}
}

func TestBuildClaudeArgs(t *testing.T) {
	args := buildClaudeArgs("sonnet", Request{System: "sys", Prompt: "do it"})
	joined := strings.Join(args, " ")
	for _, want := range []string{"-p do it", "--output-format json", "--append-system-prompt sys", "--model sonnet"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestOpenAIComplete(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Clear pitch.  "}}]}`))
	}))
	defer srv.Close()

	o := &OpenAI{BaseURL: srv.URL, Model: "gpt-4o", APIKeyEnv: "TEST_OPENAI_KEY"}
	got, err := o.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Clear pitch." {
		t.Errorf("Complete = %q", got)
	}
}

func TestOpenAIStatusClassification(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"rate limited", http.StatusTooManyRequests, "", true},
		{"bad gateway", http.StatusBadGateway, "", true},
		{"unauthorized", http.StatusUnauthorized, "", false},
		{"api error", http.StatusBadRequest, `{"error":{"message":"bad model","type":"invalid_request_error"}}`, false},
		{"overloaded api error", http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			o := &OpenAI{BaseURL: srv.URL, Model: "gpt-4o", APIKeyEnv: "TEST_OPENAI_KEY"}
			_, err := o.Complete(context.Background(), Request{Prompt: "p"})
			var re *Error
			if !errors.As(err, &re) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if re.Op != "openai" {
				t.Errorf("Op = %q", re.Op)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := &OpenAI{BaseURL: srv.URL + "/", Model: "gpt-4o", APIKeyEnv: "TEST_OPENAI_KEY", Client: srv.Client()}
	_, err := o.Complete(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, ErrEmptyResponse) || !IsRetryable(err) {
		t.Errorf("error = %v, want retryable ErrEmptyResponse", err)
	}
}

func TestOpenAIMissingCredential(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	o := &OpenAI{BaseURL: "http://127.0.0.1:1", APIKeyEnv: "TEST_OPENAI_KEY"}
	if _, err := o.Complete(context.Background(), Request{Prompt: "p"}); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("error = %v, want ErrMissingCredential", err)
	}
}

func TestNewRequiresCredential(t *testing.T) {
	t.Setenv("TEST_MISSING_KEY", "")
	cfg := config.DefaultConfig()
	cfg.Refiner.Provider = "openai"
	cfg.Refiner.APIKeyEnv = "TEST_MISSING_KEY"
	if _, err := New(cfg); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("New error = %v, want ErrMissingCredential", err)
	}
}

func TestNewRequiresCLI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Refiner.CLIPath = "definitely-not-a-real-claude-binary"
	if _, err := New(cfg); !errors.Is(err, ErrCLINotFound) {
		t.Errorf("New error = %v, want ErrCLINotFound", err)
	}
}

func TestStaticEchoes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Refiner.Provider = "static"
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := svc.Refine(context.Background(), "Q?", "We help clinics.")
	if err != nil || got != "We help clinics." {
		t.Errorf("Refine = %q, %v", got, err)
	}
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array", `["A","B"]`, `["A","B"]`},
		{"fenced", "Here:\n```json\n[\"A\"]\n```\nDone", `["A"]`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around array", `Sure! ["A","B"] hope that helps`, `["A","B"]`},
		{"array of objects", `Outline: [{"title":"x"}]`, `[{"title":"x"}]`},
		{"no json", "just text", "just text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSON(tt.in); got != tt.want {
				t.Errorf("CleanJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildNamesPrompt(t *testing.T) {
	p := BuildNamesPrompt("k3y", "care for clinics", []string{"Novaly"})
	for _, want := range []string{"DiversityKey=k3y", `["Novaly"]`, "care for clinics"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
