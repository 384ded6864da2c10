/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gemini is a minimal HTTP client for the Gemini generateContent API
// in image-output mode. Calls are single-shot: failures surface to the
// caller, there is no retry layer.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"storyboardstudio/internal/compose"
	"storyboardstudio/internal/imagedata"
)

const (
	// DefaultBaseURL is the public Generative Language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is the image-capable flash model the studio targets.
	DefaultModel = "gemini-2.5-flash-image"
)

// ErrNoImage is returned when the service answered successfully but the
// response carried no inline image data.
var ErrNoImage = errors.New("no image data in response")

// Client talks to the generateContent endpoint. The zero value is an
// unconfigured client; use New.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// Option tweaks a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used by tests and proxies).
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithModel overrides the target model.
func WithModel(m string) Option { return func(c *Client) { c.model = m } }

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// New creates a client. An empty apiKey yields an unconfigured client whose
// Configured() reports false; generation calls against it fail fast.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured reports whether the client holds an API credential.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// wire request types for models/{model}:generateContent

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inline_data,omitempty"`
}

type wireInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type wireRequest struct {
	Contents []struct {
		Parts []wirePart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

// GenerateImage requests a single image from a text-only prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (imagedata.Image, error) {
	return c.generate(ctx, []wirePart{{Text: prompt}})
}

// GenerateFromParts requests an image from an ordered list of image and text
// parts, exactly as assembled by the composer.
func (c *Client) GenerateFromParts(ctx context.Context, parts []compose.Part) (imagedata.Image, error) {
	wp := make([]wirePart, 0, len(parts))
	for _, p := range parts {
		if p.IsText() {
			wp = append(wp, wirePart{Text: p.Text})
			continue
		}
		wp = append(wp, wirePart{InlineData: &wireInlineData{
			MimeType: p.Image.MIME,
			Data:     base64.StdEncoding.EncodeToString(p.Image.Data),
		}})
	}
	return c.generate(ctx, wp)
}

func (c *Client) generate(ctx context.Context, parts []wirePart) (imagedata.Image, error) {
	if !c.Configured() {
		return imagedata.Image{}, errors.New("gemini client not configured")
	}

	var req wireRequest
	req.Contents = make([]struct {
		Parts []wirePart `json:"parts"`
	}, 1)
	req.Contents[0].Parts = parts
	req.GenerationConfig.ResponseModalities = []string{"IMAGE"}

	body, err := json.Marshal(req)
	if err != nil {
		return imagedata.Image{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return imagedata.Image{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return imagedata.Image{}, fmt.Errorf("generateContent: %w", err)
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return imagedata.Image{}, fmt.Errorf("read response: %w", err)
	}
	raw := buf.Bytes()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = resp.Status
		}
		return imagedata.Image{}, fmt.Errorf("generateContent %s: %s", resp.Status, msg)
	}

	// The first inline image of the first candidate wins; text parts in the
	// answer are ignored.
	var img imagedata.Image
	gjson.GetBytes(raw, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		data := part.Get("inlineData.data")
		if !data.Exists() {
			data = part.Get("inline_data.data")
		}
		if !data.Exists() {
			return true
		}
		decoded, derr := base64.StdEncoding.DecodeString(data.String())
		if derr != nil {
			return true
		}
		mime := part.Get("inlineData.mimeType").String()
		if mime == "" {
			mime = part.Get("inline_data.mime_type").String()
		}
		if mime == "" {
			mime = "image/png"
		}
		img = imagedata.Image{MIME: mime, Data: decoded}
		return false
	})
	if len(img.Data) == 0 {
		return imagedata.Image{}, ErrNoImage
	}
	return img, nil
}
