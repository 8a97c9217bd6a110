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


package profile

import "errors"

var (
	// ErrProfileStoreRequired is returned when no profile store is provided.
	ErrProfileStoreRequired = errors.New("profile store is required")

	// ErrDocumentStoreRequired is returned when no document store is provided.
	ErrDocumentStoreRequired = errors.New("document store is required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrNameRequired is returned when a profile operation is missing a name.
	ErrNameRequired = errors.New("profile name is required")

	// ErrDocumentTextRequired is returned when a document carries no text.
	ErrDocumentTextRequired = errors.New("document text is required")
)
