/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imagedata converts between base64 data URLs (the form images take
// in the entity collections and the project document) and raw bytes plus a
// MIME type (the form the generator and the exporter work with).
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Image is a decoded image payload.
type Image struct {
	MIME string
	Data []byte
}

var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,`)

// ErrNotDataURL is returned when the input is not a base64 image data URL.
var ErrNotDataURL = errors.New("not a base64 data URL")

// Parse splits a data URL into MIME type and decoded bytes.
func Parse(src string) (Image, error) {
	m := dataURLPattern.FindStringSubmatch(src)
	if m == nil {
		return Image{}, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(src[len(m[0]):])
	if err != nil {
		return Image{}, fmt.Errorf("decode base64 payload: %w", err)
	}
	return Image{MIME: m[1], Data: raw}, nil
}

// DataURL re-encodes the image as a base64 data URL.
func (img Image) DataURL() string {
	return "data:" + img.MIME + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Ext returns the file extension matching the MIME type, defaulting to png.
func (img Image) Ext() string {
	switch strings.ToLower(img.MIME) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/svg+xml":
		return "svg"
	default:
		return "png"
	}
}
