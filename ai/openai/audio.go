// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// doer matches the HTTP client accepted by langchaingo's openai.WithHTTPClient.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// audioClient rewrites the binary content parts langchaingo emits for audio
// into the input_audio parts OpenAI-compatible chat endpoints accept.
// Requests without audio pass through untouched.
type audioClient struct {
	next doer
}

func newAudioClient(next doer) *audioClient {
	if next == nil {
		next = http.DefaultClient
	}
	return &audioClient{next: next}
}

func (c *audioClient) Do(req *http.Request) (*http.Response, error) {
	if req.Body == nil || !strings.HasSuffix(req.URL.Path, "/chat/completions") {
		return c.next.Do(req)
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	rewritten, err := rewriteAudioParts(body)
	if err != nil {
		return nil, fmt.Errorf("rewriting audio parts: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(rewritten))
	req.ContentLength = int64(len(rewritten))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(rewritten)), nil
	}
	return c.next.Do(req)
}

// rewriteAudioParts replaces every {"type":"binary"} message part carrying a
// supported audio MIME type with {"type":"input_audio"}. The body is returned
// unchanged when there is nothing to rewrite.
func rewriteAudioParts(body []byte) ([]byte, error) {
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}

	changed := false
	messages, _ := payload["messages"].([]any)
	for _, m := range messages {
		msg, ok := m.(map[string]any)
		if !ok {
			continue
		}
		parts, ok := msg["content"].([]any)
		if !ok {
			continue
		}
		for i, p := range parts {
			part, ok := p.(map[string]any)
			if !ok || part["type"] != "binary" {
				continue
			}
			binary, _ := part["binary"].(map[string]any)
			mimeType, _ := binary["mime_type"].(string)
			format, ok := audioFormat(mimeType)
			if !ok {
				continue
			}
			parts[i] = map[string]any{
				"type": "input_audio",
				"input_audio": map[string]any{
					"data":   binary["data"],
					"format": format,
				},
			}
			changed = true
		}
	}

	if !changed {
		return body, nil
	}
	return json.Marshal(payload)
}

func audioFormat(mimeType string) (string, bool) {
	switch strings.ToLower(mimeType) {
	case "audio/mpeg", "audio/mp3":
		return "mp3", true
	case "audio/wav", "audio/wave", "audio/x-wav":
		return "wav", true
	}
	return "", false
}
