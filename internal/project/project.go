/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package project serializes the three entity collections into the versioned
// project document and parses documents back, failing closed: a document
// that is malformed, fails schema validation or carries any version other
// than the supported one is rejected wholesale.
package project

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"storyboardstudio/internal/domain"
)

//go:embed schema.json
var schemaJSON []byte

// FileName is the suggested download name for exported projects.
const FileName = "ai-storyboard-project.json"

var (
	// ErrImportParse marks a byte stream that is not well-formed JSON.
	ErrImportParse = errors.New("project file is not valid JSON")
	// ErrImportRejected marks a well-formed document of the wrong shape or
	// version.
	ErrImportRejected = errors.New("project file is invalid or incompatible")
)

// Marshal serializes a document in the human-readable export form.
func Marshal(doc domain.ProjectDocument) ([]byte, error) {
	// Collections are never nil in the export so the arrays always appear.
	if doc.Assets == nil {
		doc.Assets = []domain.Asset{}
	}
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	if doc.Results == nil {
		doc.Results = []domain.ResultScene{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse validates and decodes a project document. On any failure the
// returned document is zero and the error wraps ErrImportParse or
// ErrImportRejected.
func Parse(data []byte) (domain.ProjectDocument, error) {
	if !json.Valid(data) {
		return domain.ProjectDocument{}, ErrImportParse
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return domain.ProjectDocument{}, fmt.Errorf("%w: %v", ErrImportRejected, err)
	}
	if !result.Valid() {
		return domain.ProjectDocument{}, fmt.Errorf("%w: %s", ErrImportRejected, result.Errors()[0])
	}

	var doc domain.ProjectDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.ProjectDocument{}, fmt.Errorf("%w: %v", ErrImportParse, err)
	}
	if doc.Version != domain.ProjectVersion {
		return domain.ProjectDocument{}, fmt.Errorf("%w: unsupported version %d", ErrImportRejected, doc.Version)
	}
	return doc, nil
}
