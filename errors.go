// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package commonmark

import "fmt"

// ErrorKind classifies the ways parsing can fail.
type ErrorKind int

const (
	// MalformedInput indicates the source bytes could not be interpreted
	// as a document (for example, invalid UTF-8 that survived replacement).
	MalformedInput ErrorKind = iota + 1
	// DepthExceeded indicates a configured nesting limit
	// ([Options.MaxContainerDepth] or [Options.MaxDelimiterStackDepth]) was hit.
	DepthExceeded
	// InternalInvariant indicates a parser or renderer invariant was
	// violated, almost always because of a misbehaving custom [BlockRule]
	// or [InlineRule].
	InternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case DepthExceeded:
		return "depth exceeded"
	case InternalInvariant:
		return "internal invariant violated"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is the error type returned by [Parse], [*BlockParser.NextBlock],
// and [*InlineParser.Rewrite] when a document cannot be processed.
type ParseError struct {
	Kind ErrorKind
	// Offset is the byte offset into the source at which the error was
	// detected, or -1 if no single offset applies.
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		if e.Err != nil {
			return fmt.Sprintf("commonmark: %s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("commonmark: %s", e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("commonmark: %s at offset %d: %v", e.Kind, e.Offset, e.Err)
	}
	return fmt.Sprintf("commonmark: %s at offset %d", e.Kind, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *ParseError with the same Kind,
// so that errors.Is(err, &ParseError{Kind: DepthExceeded}) works
// without callers needing the offset or wrapped error.
func (e *ParseError) Is(target error) bool {
	other, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

func newParseError(kind ErrorKind, offset int, err error) *ParseError {
	return &ParseError{Kind: kind, Offset: offset, Err: err}
}
