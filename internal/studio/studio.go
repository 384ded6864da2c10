/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package studio holds the in-memory storyboard state and orchestrates
// image generation against it. A Studio owns the asset, product and
// result collections, the selection tracker, and the single busy flag
// that gates all generation entry points. All methods are safe for
// concurrent use.
package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"storyboardstudio/internal/compose"
	"storyboardstudio/internal/domain"
	"storyboardstudio/internal/imagedata"
	applog "storyboardstudio/internal/log"
	"storyboardstudio/internal/project"
	"storyboardstudio/internal/selection"
	"storyboardstudio/internal/store"
)

// Status labels shown while a generation request is in flight.
const (
	labelCreatingAsset   = "Creating new asset..."
	labelRegenerating    = "Regenerating asset..."
	labelContinuingScene = "Continuing the scene..."
	labelComposingScene  = "Composing your scene..."
)

// Keys under which collections persist in the key-value store.
const (
	keyAssets   = "assets"
	keyProducts = "products"
	keyResults  = "results"
)

// Generator produces images from prompts or composed part lists.
// *gemini.Client satisfies it; tests substitute fakes.
type Generator interface {
	Configured() bool
	GenerateImage(ctx context.Context, prompt string) (imagedata.Image, error)
	GenerateFromParts(ctx context.Context, parts []compose.Part) (imagedata.Image, error)
}

// Snapshot is a point-in-time copy of the studio state for rendering.
type Snapshot struct {
	Assets    []domain.Asset       `json:"assets"`
	Products  []domain.Product     `json:"products"`
	Results   []domain.ResultScene `json:"results"`
	Selection selection.State      `json:"selection"`
	Mode      string               `json:"mode"`
	Busy      bool                 `json:"busy"`
	BusyLabel string               `json:"busyLabel,omitempty"`
}

// Studio is the single owner of storyboard state.
type Studio struct {
	mu        sync.Mutex
	assets    []domain.Asset
	products  []domain.Product
	results   []domain.ResultScene
	sel       *selection.Tracker
	busy      bool
	busyLabel string

	gen   Generator
	db    *store.Store
	log   *slog.Logger
	newID func() string
}

// New builds a Studio around the given generator. The store may be nil,
// in which case state lives in memory only; with a store, previously
// persisted collections are loaded before New returns.
func New(gen Generator, db *store.Store) (*Studio, error) {
	s := &Studio{
		sel:   selection.NewTracker(),
		gen:   gen,
		db:    db,
		log:   applog.WithComponent("studio"),
		newID: func() string { return ulid.Make().String() },
	}
	if db != nil {
		if err := s.restore(context.Background()); err != nil {
			return nil, fmt.Errorf("restore studio state: %w", err)
		}
	}
	return s, nil
}

func (s *Studio) restore(ctx context.Context) error {
	if err := loadKey(ctx, s.db, keyAssets, &s.assets); err != nil {
		return err
	}
	if err := loadKey(ctx, s.db, keyProducts, &s.products); err != nil {
		return err
	}
	return loadKey(ctx, s.db, keyResults, &s.results)
}

func loadKey[T any](ctx context.Context, db *store.Store, key string, dst *[]T) error {
	raw, ok, err := db.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persistLocked writes all three collections to the store. Persistence
// is best effort: failures are logged and do not undo the in-memory
// change. Callers must hold s.mu.
func (s *Studio) persistLocked(ctx context.Context) {
	if s.db == nil {
		return
	}
	kv := make(map[string]string, 3)
	for key, v := range map[string]any{
		keyAssets:   s.assets,
		keyProducts: s.products,
		keyResults:  s.results,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			s.log.Error("encode collection", "key", key, "error", err)
			return
		}
		kv[key] = string(raw)
	}
	if err := s.db.PutAll(ctx, kv); err != nil {
		s.log.Error("persist collections", "error", err)
	}
}

// begin claims the busy flag with the given status label. It fails with
// ErrBusy if another request is already in flight.
func (s *Studio) begin(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	s.busyLabel = label
	return nil
}

func (s *Studio) finish() {
	s.mu.Lock()
	s.busy = false
	s.busyLabel = ""
	s.mu.Unlock()
}

func (s *Studio) checkGenerator() error {
	if s.gen == nil || !s.gen.Configured() {
		return ErrNotConfigured
	}
	return nil
}

// Snapshot returns a copy of the current state. Collection copies are
// never nil, so the API always serializes them as JSON arrays.
func (s *Studio) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.sel.State()
	return Snapshot{
		Assets:    append(make([]domain.Asset, 0, len(s.assets)), s.assets...),
		Products:  append(make([]domain.Product, 0, len(s.products)), s.products...),
		Results:   append(make([]domain.ResultScene, 0, len(s.results)), s.results...),
		Selection: sel,
		Mode:      selection.Resolve(sel).String(),
		Busy:      s.busy,
		BusyLabel: s.busyLabel,
	}
}

// Busy reports whether a generation request is in flight, along with
// its status label.
func (s *Studio) Busy() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy, s.busyLabel
}

// UploadAsset registers a user-provided image as an asset. The src must
// be a base64 data URL; no generation call is made.
func (s *Studio) UploadAsset(ctx context.Context, src string) (domain.Asset, error) {
	if _, err := imagedata.Parse(src); err != nil {
		return domain.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.Asset{ID: s.newID(), Src: src, Origin: domain.OriginUploaded}
	s.assets = append(s.assets, a)
	s.persistLocked(ctx)
	s.log.Info("asset uploaded", "id", a.ID)
	return a, nil
}

// UploadProduct registers a user-provided image as a product.
func (s *Studio) UploadProduct(ctx context.Context, src string) (domain.Product, error) {
	if _, err := imagedata.Parse(src); err != nil {
		return domain.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Product{ID: s.newID(), Src: src}
	s.products = append(s.products, p)
	s.persistLocked(ctx)
	s.log.Info("product uploaded", "id", p.ID)
	return p, nil
}

// CreateAsset generates a new asset image from a structured description
// form and appends it to the asset collection.
func (s *Studio) CreateAsset(ctx context.Context, form domain.AssetForm) (domain.Asset, error) {
	if strings.TrimSpace(form.Description) == "" {
		return domain.Asset{}, ErrEmptyPrompt
	}
	if !form.Kind.Valid() {
		return domain.Asset{}, fmt.Errorf("unknown asset type %q", form.Kind)
	}
	if err := s.checkGenerator(); err != nil {
		return domain.Asset{}, err
	}
	if err := s.begin(labelCreatingAsset); err != nil {
		return domain.Asset{}, err
	}
	defer s.finish()

	prompt := compose.AssetPrompt(form)
	img, err := s.gen.GenerateImage(ctx, prompt)
	if err != nil {
		s.log.Error("create asset", "kind", form.Kind, "error", err)
		return domain.Asset{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := domain.Asset{ID: s.newID(), Src: img.DataURL(), Prompt: prompt, Origin: domain.OriginGenerated}
	s.assets = append(s.assets, a)
	s.persistLocked(ctx)
	s.log.Info("asset created", "id", a.ID, "kind", form.Kind)
	return a, nil
}

// RegenerateAsset re-renders an existing asset according to an edit
// instruction. The asset keeps its id; only its image data changes. On
// failure the asset is left untouched.
func (s *Studio) RegenerateAsset(ctx context.Context, id, instruction string) (domain.Asset, error) {
	if strings.TrimSpace(instruction) == "" {
		return domain.Asset{}, ErrEmptyPrompt
	}
	if err := s.checkGenerator(); err != nil {
		return domain.Asset{}, err
	}

	s.mu.Lock()
	idx := -1
	for i := range s.assets {
		if s.assets[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.Asset{}, fmt.Errorf("%w: asset %s", ErrNotFound, id)
	}
	src := s.assets[idx].Src
	s.mu.Unlock()

	if err := s.begin(labelRegenerating); err != nil {
		return domain.Asset{}, err
	}
	defer s.finish()

	imgPart, err := compose.ImagePart(src)
	if err != nil {
		return domain.Asset{}, err
	}
	img, err := s.gen.GenerateFromParts(ctx, []compose.Part{imgPart, compose.TextPart(instruction)})
	if err != nil {
		s.log.Error("regenerate asset", "id", id, "error", err)
		return domain.Asset{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID == id {
			s.assets[i].Src = img.DataURL()
			s.persistLocked(ctx)
			s.log.Info("asset regenerated", "id", id)
			return s.assets[i], nil
		}
	}
	return domain.Asset{}, fmt.Errorf("%w: asset %s", ErrNotFound, id)
}

// ContinueResult extends an existing scene: the scene image plus a
// "Continue the scene" instruction go to the generator, and the answer
// is appended as a new result. The source scene is untouched.
func (s *Studio) ContinueResult(ctx context.Context, id, instruction string) (domain.ResultScene, error) {
	if strings.TrimSpace(instruction) == "" {
		return domain.ResultScene{}, ErrEmptyPrompt
	}
	if err := s.checkGenerator(); err != nil {
		return domain.ResultScene{}, err
	}

	s.mu.Lock()
	var src string
	for i := range s.results {
		if s.results[i].ID == id {
			src = s.results[i].Src
			break
		}
	}
	s.mu.Unlock()
	if src == "" {
		return domain.ResultScene{}, fmt.Errorf("%w: result %s", ErrNotFound, id)
	}

	if err := s.begin(labelContinuingScene); err != nil {
		return domain.ResultScene{}, err
	}
	defer s.finish()

	imgPart, err := compose.ImagePart(src)
	if err != nil {
		return domain.ResultScene{}, err
	}
	img, err := s.gen.GenerateFromParts(ctx, []compose.Part{imgPart, compose.TextPart(compose.ContinuePrompt(instruction))})
	if err != nil {
		s.log.Error("continue result", "id", id, "error", err)
		return domain.ResultScene{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := domain.ResultScene{ID: s.newID(), Src: img.DataURL()}
	s.results = append(s.results, res)
	s.persistLocked(ctx)
	s.log.Info("result continued", "source", id, "id", res.ID)
	return res, nil
}

// GenerateScene composes the current selection with the given prompt,
// sends it to the generator, and on success appends the answer to the
// results and clears the selection. On failure all state is untouched.
func (s *Studio) GenerateScene(ctx context.Context, prompt string) (domain.ResultScene, error) {
	if strings.TrimSpace(prompt) == "" {
		return domain.ResultScene{}, ErrEmptyPrompt
	}
	if err := s.checkGenerator(); err != nil {
		return domain.ResultScene{}, err
	}

	s.mu.Lock()
	sel := s.sel.State()
	mode := selection.Resolve(sel)
	in := s.composeInputLocked(sel)
	s.mu.Unlock()
	if mode == selection.ModeIdle {
		return domain.ResultScene{}, ErrNothingToCompose
	}

	if err := s.begin(labelComposingScene); err != nil {
		return domain.ResultScene{}, err
	}
	defer s.finish()

	parts, err := compose.Assemble(mode, prompt, in)
	if err != nil {
		return domain.ResultScene{}, err
	}
	if len(parts) == 0 {
		return domain.ResultScene{}, ErrNothingToCompose
	}

	s.log.Info("generating scene", "mode", mode, "parts", len(parts))
	img, err := s.gen.GenerateFromParts(ctx, parts)
	if err != nil {
		s.log.Error("generate scene", "mode", mode, "error", err)
		return domain.ResultScene{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := domain.ResultScene{ID: s.newID(), Src: img.DataURL()}
	s.results = append(s.results, res)
	s.sel.Clear()
	s.persistLocked(ctx)
	s.log.Info("scene generated", "id", res.ID)
	return res, nil
}

// composeInputLocked resolves selected ids to entities in selection
// order. Ids that no longer resolve are skipped. Callers must hold
// s.mu.
func (s *Studio) composeInputLocked(sel selection.State) compose.Input {
	var in compose.Input
	for _, id := range sel.AssetIDs {
		for i := range s.assets {
			if s.assets[i].ID == id {
				in.Assets = append(in.Assets, s.assets[i])
				break
			}
		}
	}
	if sel.ProductID != "" {
		for i := range s.products {
			if s.products[i].ID == sel.ProductID {
				p := s.products[i]
				in.Product = &p
				break
			}
		}
	}
	if sel.ResultID != "" {
		for i := range s.results {
			if s.results[i].ID == sel.ResultID {
				r := s.results[i]
				in.Result = &r
				break
			}
		}
	}
	return in
}

// ToggleAsset flips an asset in or out of the multi-selection.
func (s *Studio) ToggleAsset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ToggleAsset(id)
}

// SelectProduct toggles the single product selection.
func (s *Studio) SelectProduct(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectProduct(id)
}

// SelectResult toggles the single result selection, displacing any
// asset or product selection.
func (s *Studio) SelectResult(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SelectResult(id)
}

// ClearSelection deselects everything.
func (s *Studio) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// DeleteAsset removes an asset and prunes it from the selection.
func (s *Studio) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if s.assets[i].ID == id {
			s.assets = append(s.assets[:i], s.assets[i+1:]...)
			s.sel.RemoveAsset(id)
			s.persistLocked(ctx)
			s.log.Info("asset deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: asset %s", ErrNotFound, id)
}

// DeleteProduct removes a product and prunes it from the selection.
func (s *Studio) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			s.sel.RemoveProduct(id)
			s.persistLocked(ctx)
			s.log.Info("product deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: product %s", ErrNotFound, id)
}

// DeleteResult removes a result scene and prunes it from the selection.
func (s *Studio) DeleteResult(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].ID == id {
			s.results = append(s.results[:i], s.results[i+1:]...)
			s.sel.RemoveResult(id)
			s.persistLocked(ctx)
			s.log.Info("result deleted", "id", id)
			return nil
		}
	}
	return fmt.Errorf("%w: result %s", ErrNotFound, id)
}

// MoveResult moves the result at index from to index to, shifting the
// scenes in between. All other entities keep their relative order.
func (s *Studio) MoveResult(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.results)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d results", ErrNotFound, from, to, n)
	}
	if from == to {
		return nil
	}
	r := s.results[from]
	s.results = append(s.results[:from], s.results[from+1:]...)
	s.results = append(s.results[:to], append([]domain.ResultScene{r}, s.results[to:]...)...)
	s.persistLocked(ctx)
	s.log.Info("result moved", "from", from, "to", to)
	return nil
}

// SaveProject serializes the three collections into a version 1 project
// document.
func (s *Studio) SaveProject() ([]byte, error) {
	s.mu.Lock()
	doc := domain.ProjectDocument{
		Version:  domain.ProjectVersion,
		Assets:   append([]domain.Asset(nil), s.assets...),
		Products: append([]domain.Product(nil), s.products...),
		Results:  append([]domain.ResultScene(nil), s.results...),
	}
	s.mu.Unlock()
	return project.Marshal(doc)
}

// LoadProject replaces all collections with the content of a project
// document and clears the selection. A document that fails validation
// leaves the studio untouched.
func (s *Studio) LoadProject(ctx context.Context, data []byte) error {
	doc, err := project.Parse(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = doc.Assets
	s.products = doc.Products
	s.results = doc.Results
	s.sel.Clear()
	s.persistLocked(ctx)
	s.log.Info("project loaded", "assets", len(s.assets), "products", len(s.products), "results", len(s.results))
	return nil
}

// NewProject discards all entities and the selection. Confirmation is
// the caller's responsibility.
func (s *Studio) NewProject(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = nil
	s.products = nil
	s.results = nil
	s.sel.Clear()
	s.persistLocked(ctx)
	s.log.Info("project cleared")
}
