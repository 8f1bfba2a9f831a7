// Copyright 2025 CivicGraph Labs
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
	"github.com/civicgraph/schemematch/core"
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

// MarshalSchemeDocument serializes a SchemeDocument to bytes.
func MarshalSchemeDocument(doc *core.SchemeDocument) []byte {
	buf := make([]byte, core.SchemeDocumentMUS.Size(*doc))
	core.SchemeDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalSchemeDocument deserializes a SchemeDocument from bytes.
func UnmarshalSchemeDocument(data []byte) (*core.SchemeDocument, error) {
	doc, _, err := core.SchemeDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalIndexInfo serializes an IndexInfo to bytes.
func MarshalIndexInfo(info *core.IndexInfo) []byte {
	buf := make([]byte, core.IndexInfoMUS.Size(*info))
	core.IndexInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalIndexInfo deserializes an IndexInfo from bytes.
func UnmarshalIndexInfo(data []byte) (*core.IndexInfo, error) {
	info, _, err := core.IndexInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
