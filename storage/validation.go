// Copyright 2025 Poiesic Systems
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


package storage

import (
	"fmt"
	"regexp"
)

const maxCollectionNameLength = 63

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateCollectionName checks that name is usable as a collection name:
// 1 to 63 characters of letters, digits, '.', '_' or '-', starting with a
// letter or digit.
func ValidateCollectionName(name string) error {
	if len(name) == 0 || len(name) > maxCollectionNameLength {
		return fmt.Errorf("%w: %q must be 1-%d characters", ErrInvalidCollectionName, name, maxCollectionNameLength)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollectionName, name)
	}
	return nil
}
