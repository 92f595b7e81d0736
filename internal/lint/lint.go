/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package lint checks the shape of a comic script against its JSON schema.
// The parser tolerates most of what lint reports; lint tells authors what will be ignored.
package lint

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed script.schema.json
var schemaJSON []byte

// Schema returns the embedded JSON schema.
func Schema() []byte { return schemaJSON }

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Issue is one schema violation. Field is a dotted path such as "pages.0.panels.1.dialogue.0".
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string { return i.Field + ": " + i.Message }

// Check validates raw. It returns an error only when raw is not valid YAML.
func Check(raw string) ([]Issue, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("lint: %w", err)
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(jsonCompatible(doc)))
	if err != nil {
		return nil, fmt.Errorf("lint: validate: %w", err)
	}
	issues := make([]Issue, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		issues = append(issues, Issue{Field: e.Field(), Message: e.Description()})
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Field < issues[j].Field })
	return issues, nil
}

// jsonCompatible converts YAML-decoded values into types the JSON loader understands.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonCompatible(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = jsonCompatible(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonCompatible(val)
		}
		return out
	default:
		return v
	}
}
