/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package studio

import "errors"

// Sentinel errors; callers branch with errors.Is.
var (
	// ErrBusy rejects a generation entry point while another request is in
	// flight.
	ErrBusy = errors.New("a generation request is already in flight")
	// ErrNotConfigured short-circuits generation when no API credential is
	// set.
	ErrNotConfigured = errors.New("image generator is not configured")
	// ErrGenerationFailed wraps an external call that raised or returned no
	// usable image; no state was changed.
	ErrGenerationFailed = errors.New("image generation failed")
	// ErrNotFound marks an operation against an entity id that does not
	// exist.
	ErrNotFound = errors.New("entity not found")
	// ErrEmptyPrompt rejects generation without an instruction.
	ErrEmptyPrompt = errors.New("prompt must not be empty")
	// ErrNothingToCompose means the current selection yields nothing to
	// send to the generator.
	ErrNothingToCompose = errors.New("nothing to compose from the current selection")
)
