package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldagent/pkg/store"
)

const searchTimeout = 10 * time.Second

// NewInformation returns the get_information tool: topic lookup against
// either the local knowledge base or a DuckDuckGo instant-answer query.
func NewInformation(docs store.DocumentStore) Tool {
	return NewInformationWithClient(docs, &http.Client{Timeout: searchTimeout}, "https://api.duckduckgo.com")
}

// NewInformationWithClient allows injecting the HTTP client and search
// endpoint, used by tests.
func NewInformationWithClient(docs store.DocumentStore, client *http.Client, searchURL string) Tool {
	return &Func{
		ToolName: "get_information",
		Doc:      "Retrieve additional information on a topic using either the internet or the knowledge base.",
		Schema: []Param{
			{Name: "topic", Type: TypeString, Description: "Topic to look up"},
			{Name: "source", Type: TypeString, Enum: []string{"internet", "kb"}, Description: "Where to look"},
		},
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			topic := strings.ToLower(strings.TrimSpace(StringArg(args, "topic")))
			switch StringArg(args, "source") {
			case "kb":
				doc, err := docs.Get(ctx, topic)
				if errors.Is(err, store.ErrNotFound) {
					return "No information found in the knowledge base.", nil
				}
				if err != nil {
					return "", fmt.Errorf("knowledge base lookup: %w", err)
				}
				return doc.Content, nil
			case "internet":
				return searchInternet(ctx, client, searchURL, topic), nil
			default:
				return "Invalid source. Use 'internet' or 'kb'.", nil
			}
		},
	}
}

func searchInternet(ctx context.Context, client *http.Client, searchURL, topic string) string {
	req, err := http.NewRequestWithContext(ctx,
		http.MethodGet, searchURL+"/?q="+url.QueryEscape(topic)+"&format=json", nil)
	if err != nil {
		return fmt.Sprintf("Internet search failed: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Error("Internet search failed", "topic", topic, "error", err)
		return fmt.Sprintf("Internet search failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Internet search failed with status %d.", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("Internet search failed: %v", err)
	}

	var payload struct {
		Abstract string `json:"Abstract"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Sprintf("Internet search failed: %v", err)
	}
	if payload.Abstract == "" {
		return "No information found."
	}
	return payload.Abstract
}
