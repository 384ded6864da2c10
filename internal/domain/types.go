/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model of the storyboard studio: the
// three entity collections (assets, products, result scenes) and the
// versioned project document they serialize into.
package domain

// AssetOrigin records how an asset entered the library.
type AssetOrigin string

const (
	// OriginGenerated marks assets produced by the image generator.
	OriginGenerated AssetOrigin = "ai"
	// OriginUploaded marks assets uploaded by the user.
	OriginUploaded AssetOrigin = "upload"
)

// Asset is a reusable character/animal/scenery image in the library.
// Src is a base64 data URL. Prompt is recorded only for generated assets and
// is preserved across regeneration.
type Asset struct {
	ID     string      `json:"id"`
	Src    string      `json:"src"`
	Prompt string      `json:"prompt,omitempty"`
	Origin AssetOrigin `json:"type"`
}

// Product is an uploaded reference image of a product to be advertised.
type Product struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

// ResultScene is a generated composite image. The order of result scenes in
// their collection is the storyboard sequence.
type ResultScene struct {
	ID  string `json:"id"`
	Src string `json:"src"`
}

// AssetKind is the category selected in the asset creation form.
type AssetKind string

const (
	KindCharacter      AssetKind = "character"
	KindAnimal         AssetKind = "animal"
	KindScenery        AssetKind = "scenery"
	KindGameCharacter  AssetKind = "game-character"
	KindAnimeCharacter AssetKind = "anime-character"
	KindThreeD         AssetKind = "3d-character"
)

// Kinds lists every selectable asset category.
func Kinds() []AssetKind {
	return []AssetKind{
		KindCharacter,
		KindAnimal,
		KindScenery,
		KindGameCharacter,
		KindAnimeCharacter,
		KindThreeD,
	}
}

// Valid reports whether k is one of the known categories.
func (k AssetKind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable phrase used inside generation prompts.
func (k AssetKind) Label() string {
	switch k {
	case KindCharacter:
		return "person"
	case KindAnimal:
		return "animal"
	case KindScenery:
		return "scenery"
	case KindGameCharacter:
		return "game character"
	case KindAnimeCharacter:
		return "anime character"
	case KindThreeD:
		return "3D animated character"
	default:
		return string(k)
	}
}

// AssetForm is the structured input of the asset creation studio.
// Gender and Ethnicity are honored only for KindCharacter.
type AssetForm struct {
	Kind        AssetKind `json:"assetType"`
	Description string    `json:"description"`
	Gender      string    `json:"gender,omitempty"`
	Ethnicity   string    `json:"race,omitempty"`
}

// ProjectVersion is the single supported project document version. Documents
// with any other version are rejected wholesale on import.
const ProjectVersion = 1

// ProjectDocument is the persisted/exported form of the whole project.
type ProjectDocument struct {
	Version  int           `json:"version"`
	Assets   []Asset       `json:"assets"`
	Products []Product     `json:"products"`
	Results  []ResultScene `json:"results"`
}
