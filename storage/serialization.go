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


package storage

import (
	"github.com/poiesic/fundmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalOpportunityRecord serializes an OpportunityRecord to bytes.
func MarshalOpportunityRecord(record *core.OpportunityRecord) []byte {
	buf := make([]byte, core.OpportunityRecordMUS.Size(*record))
	core.OpportunityRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalOpportunityRecord deserializes an OpportunityRecord from bytes.
func UnmarshalOpportunityRecord(data []byte) (*core.OpportunityRecord, error) {
	record, _, err := core.OpportunityRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalProfileRecord serializes a ProfileRecord to bytes.
func MarshalProfileRecord(record *core.ProfileRecord) []byte {
	buf := make([]byte, core.ProfileRecordMUS.Size(*record))
	core.ProfileRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalProfileRecord deserializes a ProfileRecord from bytes.
func UnmarshalProfileRecord(data []byte) (*core.ProfileRecord, error) {
	record, _, err := core.ProfileRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
