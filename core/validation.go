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

import "fmt"

// ValidateOpportunity validates an OpportunityRecord according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Status must be a valid OpportunityStatus
//
// NOT validated (populated during ingestion):
//   - Vector (can be empty until embedding runs)
//   - Deadline (zero value is a legal "unknown" state)
//   - ID and Seq (assigned by storage)
func ValidateOpportunity(record *OpportunityRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidOpportunity)
	}

	if record.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOpportunity, ErrEmptyTitle)
	}

	if err := ValidateStatus(record.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOpportunity, err)
	}

	return nil
}

// ValidateProfile validates a ProfileRecord according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//
// NOT validated:
//   - Vector (can be empty until the profile is embedded)
//   - Documents and URLs (empty lists are legal)
func ValidateProfile(record *ProfileRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidProfile)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyName)
	}

	return nil
}

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - RawText must not be empty
//   - Source must be a valid SourceType
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.RawText == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	if err := ValidateSourceType(doc.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateStatus checks that a status is one of the defined values.
func ValidateStatus(status OpportunityStatus) error {
	switch status {
	case StatusActive, StatusExpired, StatusUnprocessed:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
}

// ValidateSourceType checks that a source type is one of the defined values.
func ValidateSourceType(source SourceType) error {
	switch source {
	case SourceTypePDF, SourceTypeURL, SourceTypeJSON, SourceTypeCSVRow:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSourceType, source)
	}
}
