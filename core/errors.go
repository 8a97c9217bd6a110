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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidOpportunity indicates an OpportunityRecord failed validation.
	ErrInvalidOpportunity = errors.New("invalid opportunity record")

	// ErrInvalidProfile indicates a ProfileRecord failed validation.
	ErrInvalidProfile = errors.New("invalid profile record")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyText indicates the RawText field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidStatus indicates an invalid OpportunityStatus value.
	ErrInvalidStatus = errors.New("invalid opportunity status")

	// ErrInvalidSourceType indicates an invalid SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")
)
