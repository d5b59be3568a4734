package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/localhive/localhive/internal/schema"
)

// ChatStream implements the incremental variant of Chat. Content deltas and
// tool-call fragments are reported to h as they arrive; the assembled
// response is returned once the provider signals the terminal reason.
func (p *OpenAIProvider) ChatStream(
	ctx context.Context,
	messages schema.Messages,
	tools []map[string]any,
	opts schema.ChatOptions,
	h schema.StreamHandler,
) (schema.LLMResponse, error) {
	body := p.requestBody(messages, tools, opts, true)

	data, err := json.Marshal(body)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("marshal stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return schema.LLMResponse{}, fmt.Errorf("HTTP stream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return schema.LLMResponse{}, fmt.Errorf("completion service HTTP %d: %s",
			resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}

	return consumeChatSSE(resp.Body, h)
}

// deltaChunk is one parsed `data:` payload of the chat-completions stream.
type deltaChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallAccumulator reassembles one streamed tool call. The provider may
// split the call's name and arguments across many fragments, all tagged
// with the same index.
type toolCallAccumulator struct {
	index     int
	id        string
	name      string
	arguments strings.Builder
}

// consumeChatSSE reads the event stream, growing one accumulator per
// tool-call index and reporting each fragment's cumulative state to h.
func consumeChatSSE(body io.Reader, h schema.StreamHandler) (schema.LLMResponse, error) {
	var (
		content      strings.Builder
		accumulators = map[int]*toolCallAccumulator{}
		finishReason = ""
	)

	handleData := func(data string) {
		var chunk deltaChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return
		}
		if len(chunk.Choices) == 0 {
			return
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			content.WriteString(choice.Delta.Content)
			if h != nil {
				h.OnContent(choice.Delta.Content)
			}
		}

		for _, tc := range choice.Delta.ToolCalls {
			acc, ok := accumulators[tc.Index]
			if !ok {
				acc = &toolCallAccumulator{index: tc.Index}
				accumulators[tc.Index] = acc
			}
			if tc.ID != "" {
				acc.id = tc.ID
			}
			if tc.Function.Name != "" {
				acc.name += tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				acc.arguments.WriteString(tc.Function.Arguments)
			}
			if h != nil {
				h.OnToolCallDelta(schema.ToolCallFragment{
					Index:     acc.index,
					ID:        acc.id,
					Name:      acc.name,
					Arguments: acc.arguments.String(),
				})
			}
		}

		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var sseLines []string

	flush := func() {
		defer func() { sseLines = sseLines[:0] }()
		var dataParts []string
		for _, l := range sseLines {
			if strings.HasPrefix(l, "data:") {
				dataParts = append(dataParts, strings.TrimSpace(l[5:]))
			}
		}
		if len(dataParts) == 0 {
			return
		}
		data := strings.Join(dataParts, "\n")
		if data == "" || data == "[DONE]" {
			return
		}
		handleData(data)
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
		} else {
			sseLines = append(sseLines, line)
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return schema.LLMResponse{}, fmt.Errorf("read completion stream: %w", err)
	}
	if finishReason == "" {
		return schema.LLMResponse{}, fmt.Errorf("completion stream ended without a finish reason")
	}

	return assembleStreamedResponse(content.String(), accumulators, finishReason), nil
}

// assembleStreamedResponse converts the completed accumulators into the
// same normalised response shape the blocking path produces. Tool calls
// keep their stream order (ascending index).
func assembleStreamedResponse(
	content string,
	accumulators map[int]*toolCallAccumulator,
	finishReason string,
) schema.LLMResponse {
	var contentPtr *string
	if content != "" {
		contentPtr = &content
	}

	indexes := make([]int, 0, len(accumulators))
	for i := range accumulators {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	var toolCalls []schema.ToolCallRequest
	for _, i := range indexes {
		acc := accumulators[i]
		toolCalls = append(toolCalls, schema.ToolCallRequest{
			ID:           acc.id,
			Name:         acc.name,
			RawArguments: acc.arguments.String(),
		})
	}

	return schema.LLMResponse{
		Content:      contentPtr,
		ToolCalls:    toolCalls,
		FinishReason: finishReason,
	}
}
