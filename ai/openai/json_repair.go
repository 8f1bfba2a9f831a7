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


package openai

import "strings"

// repairJSON fixes the malformations small models produce most often:
// object keys missing their opening quote (`, max": 1` instead of
// `, "max": 1`) and trailing commas before a closing brace or bracket.
// Anything it cannot recognize is passed through untouched.
func repairJSON(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		// Trailing comma: `,` followed only by whitespace and `}` or `]`.
		if ch == ',' {
			j := i + 1
			for j < len(runes) && isSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue // drop the comma, keep the whitespace
			}
		}

		out.WriteRune(ch)

		// After `{` or `,` a key must open with a quote. If we instead see a
		// bare word terminated by `":`, the opening quote was dropped.
		if ch != '{' && ch != ',' {
			continue
		}
		j := i + 1
		for j < len(runes) && isSpace(runes[j]) {
			out.WriteRune(runes[j])
			j++
		}
		k := j
		for k < len(runes) && isKeyRune(runes[k]) {
			k++
		}
		if k > j && k+1 < len(runes) && runes[k] == '"' && runes[k+1] == ':' {
			out.WriteRune('"')
			out.WriteString(string(runes[j:k]))
			i = k - 1 // the closing quote is already present
		} else {
			i = j - 1
		}
	}

	return out.String()
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == ' '
}
