/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package compose

import (
	"fmt"
	"strings"

	"storyboardstudio/internal/domain"
)

// compositingQualifier is appended for every figure-like category so the
// generated asset can be cut out and placed into scenes.
const compositingQualifier = " The asset should be on a plain white background, full body shot, with no shadows, suitable for compositing."

// AssetPrompt builds the single descriptive prompt for the asset creation
// form. Gender and ethnicity qualifiers apply only to the person category;
// the compositing qualifier applies to every category except scenery.
func AssetPrompt(form domain.AssetForm) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a high-quality, detailed image of a %s: %s.", form.Kind.Label(), form.Description)
	if form.Kind == domain.KindCharacter {
		fmt.Fprintf(&b, " Gender: %s. Race: %s.", form.Gender, form.Ethnicity)
	}
	if form.Kind != domain.KindScenery {
		b.WriteString(compositingQualifier)
	}
	return b.String()
}

// ContinuePrompt builds the instruction for extending an existing scene.
func ContinuePrompt(instruction string) string {
	return "Continue the scene. " + instruction
}
