// Package speech synthesizes narration audio through a local VOICEVOX server,
// chunking long text and concatenating the resulting WAV segments.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Client wraps the two-call VOICEVOX synthesis protocol: /audio_query builds a
// phoneme plan, /synthesis renders it to WAV bytes.
type Client struct {
	baseURL   string
	speakerID int
	http      *http.Client
}

func NewClient(baseURL string, speakerID int) *Client {
	return &Client{
		baseURL:   baseURL,
		speakerID: speakerID,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Query is the structured phoneme plan returned by /audio_query. It is kept
// as a generic map so unknown engine fields survive the round trip back into
// /synthesis.
type Query map[string]interface{}

// MoraCount counts moras across all accent phrases.
func (q Query) MoraCount() int {
	phrases, ok := q["accent_phrases"].([]interface{})
	if !ok {
		return 0
	}
	total := 0
	for _, p := range phrases {
		phrase, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		if moras, ok := phrase["moras"].([]interface{}); ok {
			total += len(moras)
		}
	}
	return total
}

// SpeedScale returns the current speaking-rate multiplier (1.0 if unset).
func (q Query) SpeedScale() float64 {
	if v, ok := q["speedScale"].(float64); ok && v > 0 {
		return v
	}
	return 1.0
}

func (q Query) SetSpeedScale(scale float64) {
	q["speedScale"] = scale
}

// EstimateDuration approximates the spoken duration in seconds from the mora
// count at the current speed. One mora is roughly 0.15s at normal speed.
func (q Query) EstimateDuration() float64 {
	return float64(q.MoraCount()) * 0.15 / q.SpeedScale()
}

// Ping verifies the engine is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport("speech.Ping", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errUnreachable("speech.Ping", fmt.Errorf("version endpoint returned %d", resp.StatusCode))
	}
	return nil
}

// AudioQuery builds a phoneme plan for the text.
func (c *Client) AudioQuery(ctx context.Context, text string) (Query, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(c.speakerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/audio_query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport("speech.AudioQuery", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, errCorrupt("speech.AudioQuery", fmt.Errorf("invalid text or speaker ID %d", c.speakerID))
	case http.StatusServiceUnavailable:
		return nil, errUnreachable("speech.AudioQuery", errors.New("VOICEVOX server is not running"))
	default:
		return nil, errUnreachable("speech.AudioQuery", fmt.Errorf("VOICEVOX API error: %d", resp.StatusCode))
	}

	var q Query
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, errCorrupt("speech.AudioQuery", err)
	}
	return q, nil
}

// Synthesize renders a phoneme plan to raw WAV bytes.
func (c *Client) Synthesize(ctx context.Context, q Query) ([]byte, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("speaker", strconv.Itoa(c.speakerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/synthesis?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport("speech.Synthesize", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errUnreachable("speech.Synthesize",
			fmt.Errorf("voice synthesis failed: %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// classifyTransport assigns the error kind from the transport error value, at
// the point of failure. Timeouts and connection failures are distinct
// categories with no retry inside this package.
func classifyTransport(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errTimeout(op, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return errTimeout(op, err)
	}
	return errUnreachable(op, err)
}
