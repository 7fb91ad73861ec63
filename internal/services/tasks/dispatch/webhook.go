package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campaignledger/sessiontasks/internal/platform/timeouts"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
)

const (
	tracerName        = "github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	defaultAuthorName = "Task Assignments"
	maxErrorBody      = 512
)

type webhookMessage struct {
	Content string         `json:"content,omitempty"`
	Embeds  []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []render.Field      `json:"fields"`
	Author      webhookEmbedAuthor  `json:"author"`
	Footer      *webhookEmbedFooter `json:"footer,omitempty"`
}

type webhookEmbedAuthor struct {
	Name string `json:"name"`
}

type webhookEmbedFooter struct {
	Text string `json:"text"`
}

// EncodeWebhook converts payload into the chat webhook JSON body, one embed
// per section.
func EncodeWebhook(payload render.Payload) ([]byte, error) {
	msg := webhookMessage{
		Content: payload.Content,
		Embeds:  make([]webhookEmbed, 0, len(payload.Sections)),
	}
	for _, section := range payload.Sections {
		embed := webhookEmbed{
			Title:  section.Title,
			Color:  section.Color,
			Fields: section.Fields,
			Author: webhookEmbedAuthor{Name: defaultAuthorName},
		}
		if embed.Fields == nil {
			embed.Fields = []render.Field{}
		}
		if section.Footer != "" {
			embed.Footer = &webhookEmbedFooter{Text: section.Footer}
		}
		msg.Embeds = append(msg.Embeds, embed)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode webhook message: %w", err)
	}
	return body, nil
}

// Webhook posts payloads to a chat webhook URL.
type Webhook struct {
	url    string
	client *http.Client
	tracer trace.Tracer
}

// NewWebhook constructs a webhook dispatcher. A nil client gets one with the
// default dispatch timeout.
func NewWebhook(rawURL string, client *http.Client) (*Webhook, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("webhook url scheme %q is not supported", parsed.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.Dispatch}
	}
	return &Webhook{
		url:    parsed.String(),
		client: client,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Send posts payload. Any transport error or non-2xx response is returned as
// a dispatch error.
func (w *Webhook) Send(ctx context.Context, payload render.Payload) error {
	ctx, span := w.tracer.Start(ctx, "dispatch.webhook.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int("tasks.sections", len(payload.Sections))),
	)
	defer span.End()

	err := w.send(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		return Failed(err)
	}
	return nil
}

func (w *Webhook) send(ctx context.Context, payload render.Payload) error {
	body, err := EncodeWebhook(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int64("dispatch.duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("webhook responded %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		if rejected(resp.StatusCode) {
			return Permanent(err)
		}
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// rejected reports a client error that the same payload will keep hitting.
func rejected(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}

var _ Dispatcher = (*Webhook)(nil)
