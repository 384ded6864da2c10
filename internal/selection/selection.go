/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package selection tracks which entities are currently selected and derives
// the composition mode from the selection shape.
//
// Invariants, held atomically inside every mutation:
//   - a selected result excludes any asset or product selection
//   - a selected product excludes any result selection
package selection

// State is a snapshot of the current selection.
// AssetIDs preserves selection order; ProductID and ResultID are empty when
// nothing of that kind is selected.
type State struct {
	AssetIDs  []string `json:"assetIds"`
	ProductID string   `json:"productId,omitempty"`
	ResultID  string   `json:"resultId,omitempty"`
}

// Tracker holds the live selection. It is a plain state machine with total
// operations; the studio serializes access to it, so it carries no lock of
// its own.
type Tracker struct {
	assetIDs  []string
	productID string
	resultID  string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker { return &Tracker{} }

// ToggleAsset adds the id to the asset selection, or removes it if already
// selected. Selecting an asset always clears any result selection.
func (t *Tracker) ToggleAsset(id string) {
	for i, v := range t.assetIDs {
		if v == id {
			t.assetIDs = append(t.assetIDs[:i], t.assetIDs[i+1:]...)
			t.resultID = ""
			return
		}
	}
	t.assetIDs = append(t.assetIDs, id)
	t.resultID = ""
}

// SelectProduct selects the product, or deselects it if it is already the
// selected one. Always clears any result selection.
func (t *Tracker) SelectProduct(id string) {
	if t.productID == id {
		t.productID = ""
	} else {
		t.productID = id
	}
	t.resultID = ""
}

// SelectResult selects the result, or deselects it if it is already the
// selected one. Selecting a result clears asset and product selection.
func (t *Tracker) SelectResult(id string) {
	if t.resultID == id {
		t.resultID = ""
		return
	}
	t.resultID = id
	t.assetIDs = nil
	t.productID = ""
}

// Clear empties all three selection fields.
func (t *Tracker) Clear() {
	t.assetIDs = nil
	t.productID = ""
	t.resultID = ""
}

// RemoveAsset drops the id from the asset selection if present. Called when
// the entity itself is deleted, so the selection never dangles.
func (t *Tracker) RemoveAsset(id string) {
	for i, v := range t.assetIDs {
		if v == id {
			t.assetIDs = append(t.assetIDs[:i], t.assetIDs[i+1:]...)
			return
		}
	}
}

// RemoveProduct clears the product selection if it points at id.
func (t *Tracker) RemoveProduct(id string) {
	if t.productID == id {
		t.productID = ""
	}
}

// RemoveResult clears the result selection if it points at id.
func (t *Tracker) RemoveResult(id string) {
	if t.resultID == id {
		t.resultID = ""
	}
}

// State returns a copy of the current selection. AssetIDs is never nil,
// so it serializes as a JSON array.
func (t *Tracker) State() State {
	return State{
		AssetIDs:  append(make([]string, 0, len(t.assetIDs)), t.assetIDs...),
		ProductID: t.productID,
		ResultID:  t.resultID,
	}
}
