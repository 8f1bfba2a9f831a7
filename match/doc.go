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


// Package match implements the scheme recommendation pipeline.
//
// The Matcher type composes a multi-stage matching algorithm:
//   - Query expansion from the user's need and profile
//   - Semantic retrieval over the scheme document index
//   - Region applicability filtering
//   - Structured criteria extraction and three-valued eligibility evaluation
//   - Deduplication, diversification, and ranking of the final result set
//
// Candidates whose eligibility could not be fully verified are kept with a
// score penalty rather than dropped: missing information never disqualifies.
package match
