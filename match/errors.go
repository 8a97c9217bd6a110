// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import "errors"

var (
	// ErrProfileNotReady indicates that the profile has no materialized
	// embedding yet. The caller must create or reprocess the profile first.
	ErrProfileNotReady = errors.New("profile has no embedding")

	// ErrInvalidTopK indicates that the requested result count is not a
	// positive integer.
	ErrInvalidTopK = errors.New("top-k must be a positive integer")
)
