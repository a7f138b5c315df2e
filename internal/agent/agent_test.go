package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

type mockCompleter struct {
	gotModel  string
	gotSystem string
	gotUser   string
	reply     string
	err       error
}

func (m *mockCompleter) Complete(ctx context.Context, model, system, user string) (string, error) {
	m.gotModel, m.gotSystem, m.gotUser = model, system, user
	return m.reply, m.err
}

func TestNew(t *testing.T) {
	cat := DefaultCatalog()

	tests := []struct {
		name     string
		provider string
		model    string
		wantErr  error
	}{
		{"incorporated model", "anthropic", "claude-sonnet-4-0", nil},
		{"unknown provider", "mistral", "mistral-large", ErrUnknownProvider},
		{"unincorporated model", "anthropic", "claude-1", ErrNotIncorporated},
		{"empty model", "anthropic", "", ErrEmptyModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(cat, tt.provider, tt.model, "", &mockCompleter{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if want := tt.provider + ":" + tt.model; a.Model() != want {
				t.Errorf("Model() = %q, want %q", a.Model(), want)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	mock := &mockCompleter{reply: "hello there"}
	a, err := New(DefaultCatalog(), "anthropic", "claude-sonnet-4-0", "Be friendly", mock)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, err := a.Prompt(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if reply != "hello there" {
		t.Errorf("Prompt() = %q", reply)
	}
	if mock.gotModel != "claude-sonnet-4-0" {
		t.Errorf("completer got model %q, want bare model name", mock.gotModel)
	}
	if mock.gotSystem != "Be friendly" || mock.gotUser != "Hello" {
		t.Errorf("completer got system=%q user=%q", mock.gotSystem, mock.gotUser)
	}
}

func TestCatalog_Incorporated(t *testing.T) {
	cat := DefaultCatalog()

	// membership is a substring match against catalog entries
	if !cat.Incorporated("anthropic", "claude-3-5-haiku") {
		t.Error("prefix of a catalog entry should be incorporated")
	}
	if cat.Incorporated("anthropic", "gpt-4o") {
		t.Error("model from another provider should not be incorporated")
	}
	if cat.Incorporated("nobody", "anything") {
		t.Error("unknown provider should not be incorporated")
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "available_models.yaml")
	yaml := "anthropic:\n  - claude-sonnet-4-0\nlocal:\n  - llama-3.3-70b\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if !cat.HasProvider("local") {
		t.Error("HasProvider(local) = false")
	}
	if !cat.Incorporated("local", "llama-3.3-70b") {
		t.Error("Incorporated(local, llama-3.3-70b) = false")
	}
	if cat.HasProvider("openai") {
		t.Error("file catalog should not include built-in providers")
	}
}

func TestLoadCatalog_EmptyPathUsesDefault(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	for _, provider := range []string{"anthropic", "openai", "google"} {
		if !cat.HasProvider(provider) {
			t.Errorf("default catalog missing provider %q", provider)
		}
	}
}

func TestHTTPCompleter(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "pong"}}]}`))
	}))
	defer srv.Close()

	c := NewHTTPCompleter(srv.URL, "sk-test", WithHTTPClient(srv.Client()))
	out, err := c.Complete(context.Background(), "claude-sonnet-4-0", "sys", "ping")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "pong" {
		t.Errorf("Complete() = %q, want %q", out, "pong")
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHTTPCompleter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewHTTPCompleter(srv.URL, "", WithHTTPClient(srv.Client()))
	if _, err := c.Complete(context.Background(), "m", "", "ping"); !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("Complete() error = %v, want ErrEmptyCompletion", err)
	}
}
