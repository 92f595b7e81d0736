/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
)

// PrintToTemp writes a printable HTML document into dir (the system temp dir when empty)
// and returns its path. The caller opens it in a browser and removes it when done.
func PrintToTemp(dir, html string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "comic-script-*.html")
	if err != nil {
		return "", fmt.Errorf("create print file: %w", err)
	}
	if _, err := f.WriteString(html); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write print file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close print file: %w", err)
	}
	return f.Name(), nil
}
