/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

// Mode is the composition strategy derived from the selection shape. It is
// never stored; Resolve recomputes it from the current State on every read.
type Mode int

const (
	ModeIdle Mode = iota
	ModeNewScene
	ModeProductAd
	ModeFromResult
	ModeFromCharacters
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNewScene:
		return "new-scene"
	case ModeProductAd:
		return "product-ad"
	case ModeFromResult:
		return "from-result"
	case ModeFromCharacters:
		return "from-characters"
	default:
		return "idle"
	}
}

// Resolve maps the selection shape to a composition mode:
//
//	result selected                  -> FromResult
//	two or more assets               -> FromCharacters
//	one asset and a product          -> ProductAd
//	one asset                        -> NewScene
//	nothing                          -> Idle
//
// Multiple assets win over a selected product: ProductAd requires exactly
// one asset.
func Resolve(s State) Mode {
	switch {
	case s.ResultID != "":
		return ModeFromResult
	case len(s.AssetIDs) > 1:
		return ModeFromCharacters
	case len(s.AssetIDs) == 1 && s.ProductID != "":
		return ModeProductAd
	case len(s.AssetIDs) == 1:
		return ModeNewScene
	default:
		return ModeIdle
	}
}
