/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML comic script into a Chapter.
//
// Document shape:
//
//	title: string
//	synopsis: string
//	credits: "a, b" | [a, b]
//	pages:
//	  - name: string
//	    layout: "AAB\nAAB\n..C" | [AAB, AAB, ..C]
//	    panels:
//	      - name, desc, fx, caption, endCaption: string
//	        dialogue:
//	          - Alice: text           # speech
//	          - Alice/whisper: text   # custom type
//	          - /: text               # narration
//	          - /sound_effect: BOOM   # narration-style entry with a type
//
// A root that is not a mapping, a YAML syntax error, or a pages/panels/dialogue value that is
// neither null nor a list yields a *FormatError. Everything else degrades silently: unknown keys
// are ignored, non-mapping dialogue entries are dropped and non-mapping pages or panels are kept
// as nil entries so renderers can flag them in place.
func Parse(raw string) (*Chapter, error) {
	root, err := decodeRoot(raw)
	if err != nil {
		return nil, err
	}
	fields := mappingFields(root)

	ch := &Chapter{Pages: []*Page{}}
	if n := fields["title"]; n != nil && n.Kind == yaml.ScalarNode && n.Tag == "!!str" && n.Value != "" {
		ch.Title = strPtr(n.Value)
	}
	if s, ok := scalarText(fields["synopsis"]); ok {
		ch.Synopsis = strPtr(s)
	}
	ch.Credits = decodeCredits(fields["credits"])

	items, err := sequence(fields["pages"], "pages")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		pg, err := decodePage(item)
		if err != nil {
			return nil, err
		}
		ch.Pages = append(ch.Pages, pg)
	}
	return ch, nil
}

// DecodeDialogueKey splits a dialogue shorthand key into its speaker, type and narration flag.
//
//	"Alice"         -> ("Alice", "speech", false)
//	"Alice/whisper" -> ("Alice", "whisper", false)
//	"/"             -> ("", "narration", true)
//	"/thought"      -> ("", "thought", true)
//	"Bob/a/b"       -> ("Bob", "a/b", false)
//	""              -> ("Character", "speech", false)
func DecodeDialogueKey(key string) (character, typ string, narration bool) {
	if rest, ok := strings.CutPrefix(key, "/"); ok {
		if rest == "" {
			rest = TypeNarration
		}
		return "", rest, true
	}
	character, typ, _ = strings.Cut(key, "/")
	if character == "" {
		character = DefaultCharacter
	}
	if typ == "" {
		typ = TypeSpeech
	}
	return character, typ, false
}

// IsScriptFile reports whether path names a comic script (*.comic.yml or *.comic.yaml).
func IsScriptFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(name, ".comic.yml") || strings.HasSuffix(name, ".comic.yaml")
}

func decodeRoot(raw string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, syntaxError(err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &FormatError{Msg: ErrEmptyDocument.Error(), Err: ErrEmptyDocument}
	}
	root := resolve(doc.Content[0])
	if isNull(root) {
		return nil, &FormatError{Msg: ErrEmptyDocument.Error(), Err: ErrEmptyDocument}
	}
	if root.Kind != yaml.MappingNode {
		return nil, &FormatError{Line: root.Line, Column: root.Column, Msg: ErrNotMapping.Error(), Err: ErrNotMapping}
	}
	return root, nil
}

func decodePage(n *yaml.Node) (*Page, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, nil
	}
	fields := mappingFields(n)
	pg := &Page{Panels: []*Panel{}}
	if s, ok := scalarText(fields["name"]); ok {
		pg.Name = strPtr(s)
	}
	layout, err := decodeLayout(fields["layout"])
	if err != nil {
		return nil, err
	}
	pg.Layout = layout

	items, err := sequence(fields["panels"], "panels")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		pnl, err := decodePanel(item)
		if err != nil {
			return nil, err
		}
		pg.Panels = append(pg.Panels, pnl)
	}
	return pg, nil
}

func decodePanel(n *yaml.Node) (*Panel, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, nil
	}
	fields := mappingFields(n)
	pnl := &Panel{Dialogue: []Dialogue{}}
	for key, dst := range map[string]**string{
		"name":       &pnl.Name,
		"desc":       &pnl.Desc,
		"fx":         &pnl.FX,
		"caption":    &pnl.Caption,
		"endCaption": &pnl.EndCaption,
	} {
		if s, ok := scalarText(fields[key]); ok {
			*dst = strPtr(s)
		}
	}

	items, err := sequence(fields["dialogue"], "dialogue")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if d, ok := decodeDialogue(item); ok {
			pnl.Dialogue = append(pnl.Dialogue, d)
		}
	}
	return pnl, nil
}

func decodeDialogue(n *yaml.Node) (Dialogue, bool) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode || len(n.Content) < 2 {
		return Dialogue{}, false
	}
	character, typ, narration := DecodeDialogueKey(nodeString(resolve(n.Content[0])))
	return Dialogue{
		Character:   character,
		Text:        nodeString(resolve(n.Content[1])),
		Type:        typ,
		IsNarration: narration,
	}, true
}

func decodeLayout(n *yaml.Node) ([]string, error) {
	n = resolve(n)
	switch {
	case isNull(n):
		return nil, nil
	case n.Kind == yaml.ScalarNode:
		if n.Value == "" {
			return nil, nil
		}
		return strings.Split(strings.ReplaceAll(n.Value, "\r\n", "\n"), "\n"), nil
	case n.Kind == yaml.SequenceNode:
		lines := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			lines = append(lines, nodeString(resolve(item)))
		}
		return lines, nil
	default:
		return nil, &FormatError{Line: n.Line, Column: n.Column, Msg: "layout must be a string or a list of lines"}
	}
}

func decodeCredits(n *yaml.Node) []string {
	n = resolve(n)
	var out []string
	switch {
	case isNull(n):
		return nil
	case n.Kind == yaml.ScalarNode:
		if n.Value == "" {
			return nil
		}
		for _, part := range strings.Split(n.Value, ",") {
			out = append(out, strings.TrimSpace(part))
		}
	case n.Kind == yaml.SequenceNode:
		for _, item := range n.Content {
			item = resolve(item)
			if isNull(item) {
				continue
			}
			out = append(out, strings.TrimSpace(nodeString(item)))
		}
	}
	return out
}

// sequence returns the items of a list-valued field. A missing or null field is an empty list.
func sequence(n *yaml.Node, field string) ([]*yaml.Node, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, &FormatError{Line: n.Line, Column: n.Column, Msg: field + " must be a list"}
	}
	return n.Content, nil
}

func mappingFields(n *yaml.Node) map[string]*yaml.Node {
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolve(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			continue
		}
		if _, dup := fields[k.Value]; !dup {
			fields[k.Value] = resolve(n.Content[i+1])
		}
	}
	return fields
}

// resolve follows alias nodes to their anchors.
func resolve(n *yaml.Node) *yaml.Node {
	for depth := 0; n != nil && n.Kind == yaml.AliasNode && n.Alias != nil && depth < 32; depth++ {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// scalarText returns the text of a non-null, non-empty scalar.
func scalarText(n *yaml.Node) (string, bool) {
	if isNull(n) || n.Kind != yaml.ScalarNode || n.Value == "" {
		return "", false
	}
	return n.Value, true
}

// nodeString stringifies any node; non-scalars are decoded and printed.
func nodeString(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return ""
	}
	return fmt.Sprint(v)
}
