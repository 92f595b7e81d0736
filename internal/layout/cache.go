/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a rendered diagram stays memoized without being requested.
const DefaultCacheTTL = 10 * time.Minute

// Cache memoizes rendered SVG diagrams by layout text, size and options.
// A nil *Cache renders without memoizing. Errors are never cached.
type Cache struct {
	c *cache.Cache
}

// NewCache returns a cache whose entries expire ttl after their last write.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{c: cache.New(ttl, 2*ttl)}
}

// SVG parses and renders the layout lines, reusing a previous result for identical input.
func (c *Cache) SVG(lines []string, width, height float64, opt SVGOptions) (string, error) {
	if c == nil {
		return renderLines(lines, width, height, opt)
	}
	key := cacheKey(lines, width, height, opt)
	if v, ok := c.c.Get(key); ok {
		return v.(string), nil
	}
	svg, err := renderLines(lines, width, height, opt)
	if err != nil {
		return "", err
	}
	c.c.SetDefault(key, svg)
	return svg, nil
}

// Len returns the number of memoized diagrams, including expired ones not yet evicted.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.c.ItemCount()
}

// Flush drops every memoized diagram.
func (c *Cache) Flush() {
	if c != nil {
		c.c.Flush()
	}
}

func renderLines(lines []string, width, height float64, opt SVGOptions) (string, error) {
	l, err := Parse(lines)
	if err != nil {
		return "", err
	}
	return RenderSVG(l, width, height, opt)
}

// cacheKey length-prefixes every line so that distinct line slices never share a key.
func cacheKey(lines []string, width, height float64, opt SVGOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%t|%t|%d", num(width), num(height), opt.ShowNumbers, opt.ShowGrid, len(lines))
	for _, l := range lines {
		fmt.Fprintf(&b, "|%d:%s", len(l), l)
	}
	return b.String()
}
