/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "gopkg.in/yaml.v3"

// Location is a position in the page/panel structure of a script.
// Page and Panel are 0-based ordinals in document order; Panel is -1 when the
// position is inside a page but before (or outside) its panel list.
type Location struct {
	Page  int
	Panel int
}

// Locate maps a 0-based source line to the page and panel that contain it.
// It uses the same ordinal convention as the renderers: the Nth entry of pages is page N.
// ok is false when the script does not parse or the line precedes the first page.
func Locate(raw string, line int) (loc Location, ok bool) {
	root, err := decodeRoot(raw)
	if err != nil {
		return Location{}, false
	}
	pages, err := sequence(mappingFields(root)["pages"], "pages")
	if err != nil {
		return Location{}, false
	}

	target := line + 1 // yaml.Node lines are 1-based
	loc = Location{Page: -1, Panel: -1}
	var page *yaml.Node
	for i, item := range pages {
		if item.Line > target {
			break
		}
		loc.Page = i
		page = resolve(item)
	}
	if loc.Page < 0 {
		return loc, false
	}
	if page.Kind != yaml.MappingNode {
		return loc, true
	}
	panels, err := sequence(mappingFields(page)["panels"], "panels")
	if err != nil {
		return loc, true
	}
	for j, item := range panels {
		if item.Line > target {
			break
		}
		loc.Panel = j
	}
	return loc, true
}
