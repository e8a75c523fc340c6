package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/console/pkg/llm"
)

const (
	chunkPrefix = "data:"
	endMessage  = "[DONE]"
)

// Stream performs one streaming chat completion, invoking fn for every
// non-empty text delta in arrival order. The stream ends normally on the
// server's end-of-stream sentinel; any transport or decode error, or an
// error returned by fn, aborts the stream and is returned.
func (c *Client) Stream(ctx context.Context, req llm.ChatRequest, fn func(delta string) error) error {
	req.Stream = true

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	c.logger.Debug("sending streaming request",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(httpResp.Body)
		if readErr != nil {
			return fmt.Errorf("non-OK HTTP status: %s", httpResp.Status)
		}
		return apiError(httpResp, body)
	}

	scanner := bufio.NewScanner(httpResp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), chunkPrefix))

		if len(line) == 0 {
			continue
		}
		if line == endMessage {
			return nil
		}

		var chunk llm.StreamChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return fmt.Errorf("unmarshal chunk: %w", err)
		}

		if delta := chunk.DeltaContent(); delta != "" {
			if err := fn(delta); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}

	// Body ended without the end-of-stream sentinel; treat the delivered
	// content as complete the way the servers that skip [DONE] intend.
	return nil
}
