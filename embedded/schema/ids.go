/*
Copyright 2025 Nuvix Contributors. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// deriveID computes the identity of an attribute or index metadata record
// from the owning collection sequence and the lowercased key. Records are
// addressable without a separate lookup index, and two keys differing only
// in case collide on purpose.
func deriveID(collectionSequence int64, key string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%s", collectionSequence, strings.ToLower(key))))
	return hex.EncodeToString(sum[:])
}
