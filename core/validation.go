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

import (
	"fmt"
	"strings"
)

// IndianStates is the fixed jurisdiction list schemes can be scoped to.
// Names are lowercase; comparisons are case-insensitive.
var IndianStates = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar",
	"chhattisgarh", "goa", "gujarat", "haryana", "himachal pradesh",
	"jharkhand", "karnataka", "kerala", "madhya pradesh",
	"maharashtra", "manipur", "meghalaya", "mizoram", "nagaland",
	"odisha", "punjab", "rajasthan", "sikkim", "tamil nadu",
	"telangana", "tripura", "uttar pradesh", "uttarakhand",
	"west bengal",
}

// IsKnownState reports whether name is on the jurisdiction list.
// The empty string is not a state; it means unspecified.
func IsKnownState(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, state := range IndianStates {
		if state == name {
			return true
		}
	}
	return false
}

// ValidateUserProfile validates a UserProfile according to domain rules.
//
// Validation rules:
//   - Age, when provided, must not be negative
//   - AnnualIncome, when provided, must not be negative
//   - Gender, when provided, must be a recognized value
//   - Category, when provided, must be a recognized value
//   - State, when provided, must be on the jurisdiction list
//
// NOT validated (optional by design):
//   - missing Age, AnnualIncome, Gender, Category, State — the evaluator
//     treats absent values as unknown, never as a violation
//   - Occupation, EducationLevel, SpecificNeeds (free-form)
func ValidateUserProfile(profile UserProfile) error {
	if profile.Age != nil && *profile.Age < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrNegativeAge)
	}
	if profile.AnnualIncome != nil && *profile.AnnualIncome < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrNegativeIncome)
	}
	switch profile.Gender {
	case "", GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidProfile, ErrInvalidGender, profile.Gender)
	}
	switch profile.Category {
	case "", CategoryGeneral, CategorySC, CategoryST, CategoryOBC, CategoryMinority:
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidProfile, ErrInvalidCategory, profile.Category)
	}
	if profile.State != "" && !IsKnownState(profile.State) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidProfile, ErrUnknownState, profile.State)
	}
	return nil
}

// ValidateSchemeDocument validates a SchemeDocument according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//
// NOT validated (populated later):
//   - Vector (empty until the document is embedded)
//   - SchemeName ("Unknown Scheme" is a legitimate value)
func ValidateSchemeDocument(document *SchemeDocument) error {
	if document == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidSchemeDocument)
	}
	if strings.TrimSpace(document.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSchemeDocument, ErrEmptyText)
	}
	return nil
}
