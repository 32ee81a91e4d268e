package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"unimind-be/internal/constant"
)

// askRequest is the wire payload of the answering service.
type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
}

// askResponse mirrors the answering service response. A command, when
// present, arrives as a bare kind string plus event details.
type askResponse struct {
	Answer       string        `json:"answer"`
	Sources      []Citation    `json:"sources,omitempty"`
	Command      string        `json:"command,omitempty"`
	EventDetails *EventDetails `json:"event_details,omitempty"`
}

// Client is the stateless bridge to the external answering service. One call
// per user message; no streaming, no retries.
type Client struct {
	askURL     string
	ingestURL  string
	httpClient *http.Client
}

func NewClient(askURL, ingestURL string, timeout time.Duration) *Client {
	return &Client{
		askURL:    askURL,
		ingestURL: ingestURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ask sends one question and always returns a terminal Answer. Transport
// failures produce the fixed fallback text instead of an error so the caller
// can always append a reply to the log.
func (c *Client) Ask(ctx context.Context, question string, askCtx AskContext) *Answer {
	payload := askRequest{
		Question: question,
		UserID:   askCtx.UserID.String(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.errorAnswer(askCtx, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.askURL, bytes.NewReader(body))
	if err != nil {
		return c.errorAnswer(askCtx, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.errorAnswer(askCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorAnswer(askCtx, fmt.Errorf("assistant returned status %d", resp.StatusCode))
	}

	var parsed askResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.errorAnswer(askCtx, err)
	}

	answer := &Answer{
		Text:      parsed.Answer,
		Sources:   parsed.Sources,
		SessionID: askCtx.SessionID,
	}
	if parsed.Command != "" {
		answer.Command = &Command{
			Kind:         CommandKind(parsed.Command),
			EventDetails: parsed.EventDetails,
		}
	}
	return answer
}

func (c *Client) errorAnswer(askCtx AskContext, err error) *Answer {
	return &Answer{
		Text:      constant.AssistantErrorReply,
		SessionID: askCtx.SessionID,
		Err:       err,
	}
}

// Ingest uploads one document for ingestion. Only the status code is
// consumed; there is no structured error body.
func (c *Client) Ingest(ctx context.Context, filename string, content io.Reader) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ingestURL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingestion returned status %d", resp.StatusCode)
	}
	return nil
}
