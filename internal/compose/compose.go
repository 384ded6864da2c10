/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package compose assembles multi-part generation requests: the ordered
// image inputs plus the single trailing instruction for the current
// composition mode.
package compose

import (
	"fmt"

	"storyboardstudio/internal/domain"
	"storyboardstudio/internal/imagedata"
	"storyboardstudio/internal/selection"
)

// Part is one unit of a multi-part generation request: either an instruction
// string or image bytes with a MIME type, never both.
type Part struct {
	Text  string
	Image imagedata.Image
}

// IsText reports whether the part carries an instruction string.
func (p Part) IsText() bool { return len(p.Image.Data) == 0 }

// TextPart wraps an instruction string.
func TextPart(s string) Part { return Part{Text: s} }

// ImagePart decodes a data URL into an image part.
func ImagePart(src string) (Part, error) {
	img, err := imagedata.Parse(src)
	if err != nil {
		return Part{}, fmt.Errorf("image part: %w", err)
	}
	return Part{Image: img}, nil
}

// Instruction templates per mode, verbatim the phrasing the generator is
// tuned against. The user prompt is appended after the template's lead-in.
const (
	tmplNewScene       = "Create a new scene featuring the provided character(s). Scene description: %s"
	tmplProductAd      = "Create a product advertisement scene. The character provided should be interacting with or showcasing the product. Scene description: %s"
	tmplFromResult     = "Edit the provided scene based on the following instruction: %s"
	tmplFromCharacters = "Create a scene with the following characters interacting: %s"
)

// Input carries the selected entities resolved for assembly. Assets are in
// selection order.
type Input struct {
	Assets  []domain.Asset
	Product *domain.Product
	Result  *domain.ResultScene
}

type modeHandler func(prompt string, in Input) ([]Part, error)

// handlers is the exhaustive mode dispatch table; ModeIdle deliberately has
// no entry.
var handlers = map[selection.Mode]modeHandler{
	selection.ModeNewScene:       assembleNewScene,
	selection.ModeProductAd:      assembleProductAd,
	selection.ModeFromResult:     assembleFromResult,
	selection.ModeFromCharacters: assembleFromCharacters,
}

// Assemble builds the ordered part list for the mode: all image parts first,
// then exactly one instruction built from the mode's template.
//
// It returns an empty part list (and no error) when the entities the mode
// requires are missing; the caller must treat that as nothing to send. An
// empty prompt or ModeIdle is a caller bug and yields an error.
func Assemble(mode selection.Mode, prompt string, in Input) ([]Part, error) {
	if prompt == "" {
		return nil, fmt.Errorf("assemble: empty prompt")
	}
	h, ok := handlers[mode]
	if !ok {
		return nil, fmt.Errorf("assemble: no composition for mode %s", mode)
	}
	return h(prompt, in)
}

func assembleNewScene(prompt string, in Input) ([]Part, error) {
	parts, err := assetParts(in.Assets)
	if err != nil || len(parts) == 0 {
		return nil, err
	}
	return append(parts, TextPart(fmt.Sprintf(tmplNewScene, prompt))), nil
}

func assembleProductAd(prompt string, in Input) ([]Part, error) {
	if len(in.Assets) == 0 || in.Product == nil {
		return nil, nil
	}
	character, err := ImagePart(in.Assets[0].Src)
	if err != nil {
		return nil, err
	}
	product, err := ImagePart(in.Product.Src)
	if err != nil {
		return nil, err
	}
	return []Part{character, product, TextPart(fmt.Sprintf(tmplProductAd, prompt))}, nil
}

func assembleFromResult(prompt string, in Input) ([]Part, error) {
	if in.Result == nil {
		return nil, nil
	}
	scene, err := ImagePart(in.Result.Src)
	if err != nil {
		return nil, err
	}
	return []Part{scene, TextPart(fmt.Sprintf(tmplFromResult, prompt))}, nil
}

func assembleFromCharacters(prompt string, in Input) ([]Part, error) {
	parts, err := assetParts(in.Assets)
	if err != nil || len(parts) == 0 {
		return nil, err
	}
	return append(parts, TextPart(fmt.Sprintf(tmplFromCharacters, prompt))), nil
}

func assetParts(assets []domain.Asset) ([]Part, error) {
	parts := make([]Part, 0, len(assets))
	for _, a := range assets {
		p, err := ImagePart(a.Src)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}
