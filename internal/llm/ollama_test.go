package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaStreamDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path=%q, want /api/chat", r.URL.Path)
		}
		w.Write([]byte(`{"message":{"content":"a"}}` + "\n"))
		w.Write([]byte(`{"message":{"content":"b"}}` + "\n"))
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	stream, err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	text, serr := CollectText(stream)
	if serr != nil {
		t.Fatalf("unexpected stream error: %v", serr)
	}
	if text != "ab" {
		t.Fatalf("text=%q, want %q", text, "ab")
	}
}

func TestOllamaStreamSkipsMalformedLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"a"}}` + "\n"))
		w.Write([]byte("not json\n"))
		w.Write([]byte(`{"message":{"content":"b"}}` + "\n"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	stream, err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	text, serr := CollectText(stream)
	if serr != nil {
		t.Fatalf("unexpected stream error: %v", serr)
	}
	if text != "ab" {
		t.Fatalf("text=%q, want %q (malformed line must be skipped)", text, "ab")
	}
}

func TestOllamaStreamNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	stream, err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	events := drainEvents(t, stream)
	if len(events) != 1 {
		t.Fatalf("got %d events, want exactly 1 error event: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Type != EventError || ev.Err == nil {
		t.Fatalf("event=%+v, want EventError", ev)
	}
	if ev.Err.Kind != ErrStatus {
		t.Fatalf("kind=%q, want %q", ev.Err.Kind, ErrStatus)
	}
	if want := "500"; !contains(ev.Err.Message, want) {
		t.Fatalf("message %q does not name status %s", ev.Err.Message, want)
	}
}

func TestOllamaStreamConnectionRefused(t *testing.T) {
	// A closed server makes the dial fail immediately.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := server.URL
	server.Close()

	p := NewOllamaProvider(host, "llama3")
	stream, err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	events := drainEvents(t, stream)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("events=%+v, want one EventError", events)
	}
	serr := events[0].Err
	if serr.Kind != ErrConnectivity {
		t.Fatalf("kind=%q, want %q", serr.Kind, ErrConnectivity)
	}
	if !contains(serr.Message, host) {
		t.Fatalf("message %q does not name the endpoint %q", serr.Message, host)
	}
}

func TestOllamaStreamSendsSystemPromptInline(t *testing.T) {
	var gotBody ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := jsonDecode(r.Body, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"done":true}` + "\n"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	stream, err := p.Stream(context.Background(), Request{
		Messages:     []Message{{Role: RoleUser, Content: "hi"}},
		SystemPrompt: "be terse",
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	CollectText(stream)

	if gotBody.Model != "llama3" {
		t.Fatalf("model=%q, want default llama3", gotBody.Model)
	}
	if !gotBody.Stream {
		t.Fatal("stream flag not set")
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != RoleSystem {
		t.Fatalf("messages=%+v, want leading system turn", gotBody.Messages)
	}
}

func TestOllamaProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path=%q, want /api/tags", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	if !p.Probe(context.Background()) {
		t.Fatal("probe failed against a live server")
	}

	server.Close()
	if p.Probe(context.Background()) {
		t.Fatal("probe succeeded against a closed server")
	}
}

func TestOllamaListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Mixed entry shapes: objects with a name, and bare strings.
		w.Write([]byte(`{"models":[{"name":"llama3"},{"name":"mistral"},"llama3","codellama"]}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	got := p.ListModels(context.Background())
	want := []string{"codellama", "llama3", "mistral"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (sorted, deduplicated)", got, want)
		}
	}
}

func TestOllamaListModelsSoftFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	if got := p.ListModels(context.Background()); len(got) != 0 {
		t.Fatalf("got %v, want empty list on failure", got)
	}
}

func TestOllamaPullModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pull" {
			t.Errorf("path=%q, want /api/pull", r.URL.Path)
		}
		w.Write([]byte(`{"status":"pulling manifest"}` + "\n"))
		w.Write([]byte("garbage\n"))
		w.Write([]byte(`{"status":"success"}` + "\n"))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	stream := p.PullModel(context.Background(), "mistral")

	events := drainEvents(t, stream)
	var statuses []string
	for _, ev := range events {
		if ev.Type == EventTextDelta {
			statuses = append(statuses, ev.Text)
		}
	}
	if len(statuses) != 2 || statuses[0] != "pulling manifest" || statuses[1] != "success" {
		t.Fatalf("statuses=%v", statuses)
	}
	if events[len(events)-1].Type != EventDone {
		t.Fatalf("terminal event=%+v, want EventDone", events[len(events)-1])
	}
}

func TestOllamaDeleteModel(t *testing.T) {
	var gotMethod, gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		var body struct {
			Name string `json:"name"`
		}
		jsonDecode(r.Body, &body)
		gotName = body.Name
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "llama3")
	if !p.DeleteModel(context.Background(), "mistral") {
		t.Fatal("delete reported failure against a live server")
	}
	if gotMethod != http.MethodDelete || gotName != "mistral" {
		t.Fatalf("method=%q name=%q", gotMethod, gotName)
	}

	server.Close()
	if p.DeleteModel(context.Background(), "mistral") {
		t.Fatal("delete reported success against a closed server")
	}
}
