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

// inlineByteReader walks a sequence of a block's top-level inline children
// (the [UnparsedKind] and [IndentKind] spans produced while splitting lines
// into blocks) as a single logical byte stream, skipping over the
// container-prefix bytes (list markers, "> " block quote markers, and the
// like) that fall between one child's span and the next.
type inlineByteReader struct {
	source []byte
	nodes  []*Inline

	nodeIdx int
	pos     int
	prevPos int
	didJump bool
	atEnd   bool
}

// newInlineByteReader returns a reader positioned at startPos,
// which must be within the span of one of nodes or exactly at a gap before one.
func newInlineByteReader(source []byte, nodes []*Inline, startPos int) *inlineByteReader {
	r := &inlineByteReader{source: source, nodes: nodes}
	i := 0
	for ; i < len(nodes); i++ {
		sp := nodes[i].Span()
		if sp.IsValid() && startPos < sp.End {
			if startPos < sp.Start {
				startPos = sp.Start
			}
			break
		}
	}
	r.nodeIdx = i
	r.pos = startPos
	r.prevPos = startPos
	if i >= len(nodes) {
		r.atEnd = true
	}
	return r
}

// current returns the byte at the cursor, or 0 if the reader is exhausted.
func (r *inlineByteReader) current() byte {
	if r.atEnd || r.pos >= len(r.source) {
		return 0
	}
	return r.source[r.pos]
}

// next advances the cursor by one byte, possibly jumping over a gap between
// inline children. It reports whether a byte is available at the new position.
func (r *inlineByteReader) next() bool {
	if r.atEnd {
		return false
	}
	r.prevPos = r.pos
	r.didJump = false
	r.pos++
	for r.nodeIdx < len(r.nodes) {
		sp := r.nodes[r.nodeIdx].Span()
		if sp.IsValid() && r.pos < sp.End {
			return true
		}
		r.nodeIdx++
		if r.nodeIdx >= len(r.nodes) {
			r.atEnd = true
			return false
		}
		nsp := r.nodes[r.nodeIdx].Span()
		if !nsp.IsValid() {
			continue
		}
		if nsp.Start != r.pos {
			r.didJump = true
		}
		r.pos = nsp.Start
		if nsp.Len() > 0 {
			return true
		}
	}
	r.atEnd = true
	return false
}

// jumped reports whether the last call to next crossed a gap between
// two non-adjacent inline children, such as a "> " block quote prefix.
func (r *inlineByteReader) jumped() bool {
	return r.didJump
}

// remainingNodeBytes returns the bytes from the cursor
// to the end of the current inline child's span.
func (r *inlineByteReader) remainingNodeBytes() []byte {
	if r.atEnd || r.nodeIdx >= len(r.nodes) {
		return nil
	}
	sp := r.nodes[r.nodeIdx].Span()
	if !sp.IsValid() || r.pos >= sp.End {
		return nil
	}
	return r.source[r.pos:sp.End]
}

// parsedLinkLabel is the result of parsing a [link label].
//
// [link label]: https://spec.commonmark.org/0.30/#link-label
type parsedLinkLabel struct {
	span  Span // the whole "[...]" construct
	inner Span // the content between the brackets
}

// parseLinkLabel parses a link label starting at the reader's cursor.
func parseLinkLabel(r *inlineByteReader) parsedLinkLabel {
	zero := parsedLinkLabel{span: NullSpan(), inner: NullSpan()}
	if r.current() != '[' {
		return zero
	}
	start := r.pos
	if !r.next() {
		return zero
	}
	innerStart := r.pos
	nonSpace := false
	n := 0
	const maxLabelLength = 999
	for {
		switch c := r.current(); {
		case c == 0:
			return zero
		case c == '\\':
			nonSpace = true
			n += 2
			if n > maxLabelLength {
				return zero
			}
			if !r.next() || !r.next() {
				return zero
			}
		case c == '[':
			return zero
		case c == ']':
			inner := Span{Start: innerStart, End: r.pos}
			r.next()
			if !nonSpace {
				return zero
			}
			return parsedLinkLabel{span: Span{Start: start, End: r.pos}, inner: inner}
		default:
			if !isSpaceTabOrLineEnding(c) {
				nonSpace = true
			}
			n++
			if n > maxLabelLength {
				return zero
			}
			if !r.next() {
				return zero
			}
		}
	}
}

// parsedLinkDestination is the result of parsing a [link destination].
//
// [link destination]: https://spec.commonmark.org/0.30/#link-destination
type parsedLinkDestination struct {
	span Span // the whole destination, including angle brackets if present
	text Span // the destination content, excluding angle brackets
}

// parseLinkDestination parses a link destination starting at the reader's cursor.
func parseLinkDestination(r *inlineByteReader) parsedLinkDestination {
	zero := parsedLinkDestination{span: NullSpan(), text: NullSpan()}
	if r.current() == '<' {
		start := r.pos
		r.next()
		textStart := r.pos
		for {
			switch c := r.current(); {
			case c == '>':
				text := Span{Start: textStart, End: r.pos}
				r.next()
				return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: text}
			case c == '\\':
				if !r.next() || !r.next() {
					return zero
				}
			case c == 0 || c == '\n' || c == '\r' || c == '<':
				return zero
			default:
				if !r.next() {
					return zero
				}
			}
		}
	}

	start := r.pos
	depth := 0
	for {
		switch c := r.current(); {
		case c == 0:
			if depth != 0 {
				return zero
			}
			return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: Span{Start: start, End: r.pos}}
		case c == '\\':
			if !r.next() {
				return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: Span{Start: start, End: r.pos}}
			}
			r.next()
		case c == '(':
			depth++
			if !r.next() {
				return zero
			}
		case c == ')':
			if depth == 0 {
				return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: Span{Start: start, End: r.pos}}
			}
			depth--
			if !r.next() {
				return zero
			}
		case isSpaceTabOrLineEnding(c) || c < 0x20 || c == 0x7f:
			if depth != 0 {
				return zero
			}
			return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: Span{Start: start, End: r.pos}}
		default:
			if !r.next() {
				return parsedLinkDestination{span: Span{Start: start, End: r.pos}, text: Span{Start: start, End: r.pos}}
			}
		}
	}
}

// parsedLinkTitle is the result of parsing a [link title].
//
// [link title]: https://spec.commonmark.org/0.30/#link-title
type parsedLinkTitle struct {
	span Span
	text Span
}

// parseLinkTitle parses a link title starting at the reader's cursor.
func parseLinkTitle(r *inlineByteReader) parsedLinkTitle {
	zero := parsedLinkTitle{span: NullSpan(), text: NullSpan()}
	var closeChar byte
	switch r.current() {
	case '"':
		closeChar = '"'
	case '\'':
		closeChar = '\''
	case '(':
		closeChar = ')'
	default:
		return zero
	}
	openChar := r.current()
	start := r.pos
	r.next()
	textStart := r.pos
	for {
		switch c := r.current(); {
		case c == 0:
			return zero
		case c == '\\':
			if !r.next() || !r.next() {
				return zero
			}
		case c == closeChar:
			text := Span{Start: textStart, End: r.pos}
			r.next()
			return parsedLinkTitle{span: Span{Start: start, End: r.pos}, text: text}
		case openChar == '(' && c == '(':
			return zero
		default:
			if !r.next() {
				return zero
			}
		}
	}
}

// collectLinkAttributeText records the raw text of a link destination or
// title as a single child of dst, from the reader's current position to end.
func collectLinkAttributeText(dst *Inline, r *inlineByteReader, end int) {
	if r.pos >= end {
		return
	}
	dst.children = append(dst.children, &Inline{
		kind: TextKind,
		span: Span{Start: r.pos, End: end},
	})
}

// collectLinkLabelText records the raw text of a link label,
// the same way [collectLinkAttributeText] does for destinations and titles.
func collectLinkLabelText(dst *Inline, r *inlineByteReader, end int) {
	collectLinkAttributeText(dst, r, end)
}

// nodeIndexForPosition returns the index of the first node in nodes
// whose span contains or starts after pos, or -1 if there is none.
func nodeIndexForPosition(nodes []*Inline, pos int) int {
	for i, n := range nodes {
		if sp := n.Span(); sp.IsValid() && pos < sp.End {
			return i
		}
	}
	return -1
}

// transformLinkReferenceSpan computes the [normalized label]
// used to match a link reference against a [ReferenceMap].
//
// [normalized label]: https://spec.commonmark.org/0.30/#matches
func transformLinkReferenceSpan(source []byte, nodes []*Inline, inner Span) string {
	return NormalizeLinkLabel(string(spanSlice(source, inner)))
}
