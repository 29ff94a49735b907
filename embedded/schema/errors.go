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

import "errors"

var (
	ErrIllegalArguments = errors.New("illegal arguments")

	ErrCollectionNotFound      = errors.New("collection not found")
	ErrCollectionAlreadyExists = errors.New("collection already exists")

	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrAttributeAlreadyExists = errors.New("attribute already exists")
	ErrAttributeNotAvailable  = errors.New("attribute is not available")
	ErrAttributeTypeInvalid   = errors.New("attribute type does not match")
	ErrAttributeLimitExceeded = errors.New("attribute limit exceeded")
	ErrAttributeUnknown       = errors.New("unknown attribute")
	ErrAttributeInvalidResize = errors.New("attribute cannot be resized")

	ErrFormatUnsupported  = errors.New("format unsupported for attribute type")
	ErrDefaultUnsupported = errors.New("default value unsupported")
	ErrValueInvalid       = errors.New("invalid value")

	ErrIndexNotFound      = errors.New("index not found")
	ErrIndexAlreadyExists = errors.New("index already exists")
	ErrIndexLimitExceeded = errors.New("index limit exceeded")
	ErrIndexInvalid       = errors.New("invalid index")
)

// Sentinels raised by Store implementations. The lifecycle managers remap
// them into the domain errors above at each call site.
var (
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrCapacityExceeded     = errors.New("capacity limit exceeded")
	ErrTruncationNotAllowed = errors.New("data would be truncated")
)

func mayTranslateAttributeError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDuplicateKey) {
		return ErrAttributeAlreadyExists
	}

	if errors.Is(err, ErrCapacityExceeded) {
		return ErrAttributeLimitExceeded
	}

	if errors.Is(err, ErrTruncationNotAllowed) {
		return ErrAttributeInvalidResize
	}

	return err
}

func mayTranslateIndexError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDuplicateKey) {
		return ErrIndexAlreadyExists
	}

	if errors.Is(err, ErrCapacityExceeded) {
		return ErrIndexLimitExceeded
	}

	return err
}

func mayTranslateCollectionError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrDuplicateKey) {
		return ErrCollectionAlreadyExists
	}

	return err
}
