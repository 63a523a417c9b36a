package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fieldagent/pkg/domain"
	"fieldagent/pkg/runner"
	"fieldagent/pkg/store"
	"fieldagent/pkg/tools"
)

// memDocs is an in-memory DocumentStore for handler tests.
type memDocs struct {
	docs map[string]string
}

func (m *memDocs) Put(_ context.Context, doc *store.Document) error {
	m.docs[strings.ToLower(doc.Topic)] = doc.Content
	return nil
}

func (m *memDocs) Get(_ context.Context, topic string) (*store.Document, error) {
	content, ok := m.docs[strings.ToLower(topic)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Document{Topic: strings.ToLower(topic), Content: content}, nil
}

func (m *memDocs) List(_ context.Context) ([]store.Document, error) {
	var out []store.Document
	for topic, content := range m.docs {
		out = append(out, store.Document{Topic: topic, Content: content})
	}
	return out, nil
}

func (m *memDocs) Delete(_ context.Context, topic string) error {
	key := strings.ToLower(topic)
	if _, ok := m.docs[key]; !ok {
		return store.ErrNotFound
	}
	delete(m.docs, key)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	run := runner.New(nil, "")
	docs := &memDocs{docs: map[string]string{}}
	newAgent := func() *domain.Agent {
		return domain.NewAgent("test", "", tools.NewRegistry(tools.NewWeather()))
	}
	srv := httptest.NewServer(New(run, docs, newAgent).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, base, session, message string) string {
	t.Helper()
	url := base + "/chat"
	if session != "" {
		url += "?session=" + session
	}
	resp, err := http.Post(url, "application/json",
		strings.NewReader(`{"message": "`+message+`"}`))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /chat status = %d", resp.StatusCode)
	}
	var body ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	return body.Reply
}

func TestChatLocalMode(t *testing.T) {
	srv := newTestServer(t)

	if got := postChat(t, srv.URL, "", "hi"); got != runner.GreetingReply {
		t.Errorf("reply = %q, want %q", got, runner.GreetingReply)
	}
}

func TestChatSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	postChat(t, srv.URL, "a", "remember the maize price")
	got := postChat(t, srv.URL, "b", "what did i just say")
	if got != runner.DefaultReply {
		t.Errorf("session b recalled %q, want %q (no shared history)", got, runner.DefaultReply)
	}
	got = postChat(t, srv.URL, "a", "what did i just say")
	if got != "remember the maize price" {
		t.Errorf("session a recall = %q", got)
	}
}

func TestChatBadBody(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /chat: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUsageCountsMessages(t *testing.T) {
	srv := newTestServer(t)

	postChat(t, srv.URL, "u", "hi")
	postChat(t, srv.URL, "u", "hello")

	resp, err := http.Get(srv.URL + "/usage?session=u")
	if err != nil {
		t.Fatalf("GET /usage: %v", err)
	}
	defer resp.Body.Close()
	var usage Usage
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usage.Messages != 2 {
		t.Errorf("Messages = %d, want 2", usage.Messages)
	}
}

func TestDocAdminLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	put := func(topic, content string) *http.Response {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/admin/docs/"+topic, strings.NewReader(content))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT doc: %v", err)
		}
		return resp
	}

	resp := put("rice", "Rice is a staple.")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("PUT status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := client.Get(srv.URL + "/admin/docs")
	if err != nil {
		t.Fatalf("GET docs: %v", err)
	}
	var listing map[string][]string
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	resp.Body.Close()
	if len(listing["files"]) != 1 || listing["files"][0] != "rice" {
		t.Errorf("files = %v, want [rice]", listing["files"])
	}

	resp, err = client.Get(srv.URL + "/admin/docs/rice")
	if err != nil {
		t.Fatalf("GET doc: %v", err)
	}
	var doc store.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	resp.Body.Close()
	if doc.Content != "Rice is a staple." {
		t.Errorf("Content = %q", doc.Content)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/admin/docs/rice", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE doc: %v", err)
	}
	var deleted map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&deleted); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	resp.Body.Close()
	if !deleted["deleted"] {
		t.Error("delete response missing deleted=true")
	}

	resp, err = client.Get(srv.URL + "/admin/docs/rice")
	if err != nil {
		t.Fatalf("GET deleted doc: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted doc status = %d, want 404", resp.StatusCode)
	}
}

func TestClearHistory(t *testing.T) {
	srv := newTestServer(t)

	postChat(t, srv.URL, "s", "the sky is blue")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/admin/history/s", nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("DELETE history: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE history status = %d", resp.StatusCode)
	}

	got := postChat(t, srv.URL, "s", "what did i just say")
	if got != runner.DefaultReply {
		t.Errorf("recall after clear = %q, want %q", got, runner.DefaultReply)
	}
}
