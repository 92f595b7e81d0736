/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Chapter is the root of a parsed comic script: optional header fields and its pages in document order.
// A nil entry in Pages marks a page that was present in the source but was not a mapping.
type Chapter struct {
	Title    *string
	Synopsis *string
	Credits  []string
	Pages    []*Page
}

// Page holds an optional name, the raw layout grid lines and the panels in document order.
// Layout is nil when the page has no layout; Panels is never nil.
type Page struct {
	Name   *string
	Layout []string
	Panels []*Panel
}

// HasLayout reports whether the page carries a layout grid.
func (p *Page) HasLayout() bool { return p != nil && p.Layout != nil }

// Panel is a single panel. Nil text fields are omitted from rendering; Dialogue is never nil.
type Panel struct {
	Name       *string
	Desc       *string
	FX         *string
	Caption    *string
	EndCaption *string
	Dialogue   []Dialogue
}

// Well-known dialogue types. Any other string is a custom type such as "whisper" or "thought".
const (
	TypeSpeech      = "speech"
	TypeNarration   = "narration"
	TypeSoundEffect = "sound_effect"
)

// DefaultCharacter names a speaker whose shorthand key has an empty character part.
const DefaultCharacter = "Character"

// Dialogue is one decoded dialogue entry.
type Dialogue struct {
	Character   string
	Text        string
	Type        string
	IsNarration bool
}

func strPtr(s string) *string { return &s }
