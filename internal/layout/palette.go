/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"image/color"
	"strconv"
	"strings"
)

// Palette is the fixed fill cycle for panels. Colors repeat after len(Palette) panels.
var Palette = [...]string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4", "#ffeaa7",
	"#dda0dd", "#98d8c8", "#f7dc6f", "#bb8fce", "#85c1e9",
	"#f8c471", "#82e0aa", "#f1948a", "#85c1e9", "#d7bde2",
}

// PanelColor returns the palette entry for a panel sort key: (number-1) mod len(Palette),
// wrapped into range for keys below 1.
func PanelColor(number int) string {
	n := len(Palette)
	idx := ((number-1)%n + n) % n
	return Palette[idx]
}

// ContrastColor picks black or white text for a "#rrggbb" fill using the
// luminance approximation (0.299R + 0.587G + 0.114B) / 255.
func ContrastColor(hex string) string {
	c, ok := parseHex(hex)
	if !ok {
		return "#000000"
	}
	if luminance(c) > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

func luminance(c color.RGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

func parseHex(hex string) (color.RGBA, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}
