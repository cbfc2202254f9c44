package llm

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sparkTimeout = 60 * time.Second

// Spark calls the iFlytek Spark chat API over its websocket transport.
// Each Complete dials a fresh connection, streams response chunks, and
// returns once the server reports the final frame or the deadline passes.
type Spark struct {
	appID     string
	apiKey    string
	apiSecret string
	domain    string
	scheme    string
	host      string
	path      string
}

// NewSpark creates a Spark websocket client for the given domain
// (e.g. "4.0Ultra").
func NewSpark(appID, apiKey, apiSecret, domain string) *Spark {
	return &Spark{
		appID:     appID,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		domain:    domain,
		scheme:    "wss",
		host:      "spark-api.xf-yun.com",
		path:      "/v4.0/chat",
	}
}

// authURL builds the signed wss:// URL. Spark authenticates with an
// HMAC-SHA256 signature over "host / date / request-line", base64-wrapped
// twice per their scheme.
func (s *Spark) authURL(now time.Time) string {
	date := now.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")

	origin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", s.host, date, s.path)
	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	auth := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		s.apiKey, signature)

	q := url.Values{}
	q.Set("authorization", base64.StdEncoding.EncodeToString([]byte(auth)))
	q.Set("date", date)
	q.Set("host", s.host)

	return fmt.Sprintf("%s://%s%s?%s", s.scheme, s.host, s.path, q.Encode())
}

type sparkFrame struct {
	Header struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"header"`
	Payload struct {
		Choices struct {
			Status int `json:"status"`
			Text   []struct {
				Content string `json:"content"`
			} `json:"text"`
		} `json:"choices"`
	} `json:"payload"`
}

// Complete sends a prompt over the Spark websocket and accumulates the
// streamed reply. The call is bounded by the context deadline, defaulting
// to 60 seconds.
func (s *Spark) Complete(ctx context.Context, prompt string) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sparkTimeout)
		defer cancel()
	}

	dialer := websocket.Dialer{
		TLSClientConfig:  &tls.Config{MinVersion: tls.VersionTLS12},
		HandshakeTimeout: 15 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.authURL(time.Now()), nil)
	if err != nil {
		return nil, fmt.Errorf("spark dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	req := map[string]any{
		"header": map[string]any{
			"app_id": s.appID,
			"uid":    uuid.NewString(),
		},
		"parameter": map[string]any{
			"chat": map[string]any{
				"domain":      s.domain,
				"temperature": 0.3,
				"max_tokens":  1024,
			},
		},
		"payload": map[string]any{
			"message": map[string]any{
				"text": []map[string]string{
					{"role": "user", "content": prompt},
				},
			},
		},
	}

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("spark send: %w", err)
	}

	var answer string
	for {
		var frame sparkFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return nil, fmt.Errorf("spark read: %w", err)
		}

		if frame.Header.Code != 0 {
			return nil, fmt.Errorf("spark api error %d: %s", frame.Header.Code, frame.Header.Message)
		}

		for _, t := range frame.Payload.Choices.Text {
			answer += t.Content
		}

		// Status 2 marks the final frame
		if frame.Payload.Choices.Status == 2 {
			break
		}
	}

	return &Response{
		Content:  answer,
		Provider: "spark",
	}, nil
}
