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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidProfile indicates a UserProfile failed validation. It is the
	// only error the matching pipeline surfaces to callers as fatal.
	ErrInvalidProfile = errors.New("invalid user profile")

	// ErrInvalidSchemeDocument indicates a SchemeDocument failed validation.
	ErrInvalidSchemeDocument = errors.New("invalid scheme document")

	// ErrNegativeAge indicates the Age field is negative.
	ErrNegativeAge = errors.New("age cannot be negative")

	// ErrNegativeIncome indicates the AnnualIncome field is negative.
	ErrNegativeIncome = errors.New("annual income cannot be negative")

	// ErrInvalidGender indicates an unrecognized Gender value.
	ErrInvalidGender = errors.New("invalid gender")

	// ErrInvalidCategory indicates an unrecognized Category value.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUnknownState indicates a state outside the jurisdiction list.
	ErrUnknownState = errors.New("unknown state")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")
)
