/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrEmptyDocument is returned for input without any YAML content.
	ErrEmptyDocument = errors.New("empty document")
	// ErrNotMapping is returned when the document root is not a mapping.
	ErrNotMapping = errors.New("document root is not a mapping")
)

// FormatError reports a script that cannot be turned into a Chapter.
// Line and Column are 1-based; zero means the position is unknown.
type FormatError struct {
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("format error at line %d, column %d: %s", e.Line, e.Column, msg)
	case e.Line > 0:
		return fmt.Sprintf("format error at line %d: %s", e.Line, msg)
	default:
		return "format error: " + msg
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

var reYAMLLine = regexp.MustCompile(`line (\d+)`)

// syntaxError wraps a YAML decoder error, recovering the line number from its message.
func syntaxError(err error) *FormatError {
	fe := &FormatError{Msg: err.Error(), Err: err}
	if m := reYAMLLine.FindStringSubmatch(err.Error()); m != nil {
		fe.Line, _ = strconv.Atoi(m[1])
	}
	return fe
}
