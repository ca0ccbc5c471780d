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

// Package commonmark provides a [CommonMark] and [GitHub-Flavored Markdown]
// parser and HTML renderer.
//
// [CommonMark]: https://commonmark.org/
// [GitHub-Flavored Markdown]: https://github.github.com/gfm/
package commonmark

import (
	"bytes"
	"fmt"
	"io"
)

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// BlockParser reads a stream of bytes into a single [RootBlock]
// whose children are the stream's top-level blocks.
// A BlockParser does not parse inline content; pair it with an
// [InlineParser] to rewrite the leaves it produces.
type BlockParser struct {
	rules    map[BlockKind]blockRule
	starts   []func(*lineParser)
	maxDepth int

	buf      []byte // current block being parsed
	offset   int64  // offset from beginning of stream to beginning of buf
	parsePos int     // parse position within buf
	lineno   int     // line number of parse position

	r   io.Reader
	err error // non-nil indicates there is no more data after end of buf
}

// NewBlockParser returns a parser that reads Markdown source from r.
// A nil opts is equivalent to [CommonMark]().
func NewBlockParser(r io.Reader, opts *Options) *BlockParser {
	opts = opts.orDefault()
	return &BlockParser{
		rules:    opts.blockRuleTable(),
		starts:   opts.blockStartTable(),
		maxDepth: opts.maxContainerDepth(),
		r:        r,
	}
}

// Parse parses a whole document, returning its top-level blocks and the
// table of link reference definitions found anywhere in the document.
// Inline content is parsed and the tree is rewritten in place before
// being returned: callers do not need to call [*InlineParser.Rewrite]
// themselves. A nil opts is equivalent to [CommonMark]().
func Parse(source []byte, opts *Options) ([]*RootBlock, ReferenceMap, error) {
	opts = opts.orDefault()
	if bytes.IndexByte(source, 0) >= 0 {
		// Contains one or more NUL bytes.
		// Replace with Unicode replacement character, per the Unicode
		// recommendation for handling invalid/insecure input bytes.
		source = bytes.ReplaceAll(source, []byte{0}, []byte("�"))
	}

	bp := NewBlockParser(bytes.NewReader(source), opts)
	var blocks []*RootBlock
	for {
		block, err := bp.NextBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		blocks = append(blocks, block)
	}

	refMap := make(ReferenceMap)
	for _, root := range blocks {
		refMap.Extract(root.Source, root.AsNode())
	}
	ip := &InlineParser{ReferenceMatcher: refMap, Options: opts}
	for _, root := range blocks {
		if err := ip.Rewrite(root); err != nil {
			return blocks, refMap, err
		}
	}
	return blocks, refMap, nil
}

// NextBlock reads and returns the next root block from the parser's
// [io.Reader]. It returns an error wrapping [io.EOF] once the stream is
// exhausted.
func (bp *BlockParser) NextBlock() (root *RootBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			root, err = nil, pe
		}
	}()

	// Keep going until we encounter a non-blank line.
	var line []byte
	for {
		line = bp.readline()
		if len(line) == 0 {
			return nil, bp.err
		}
		if !isBlankLine(line) {
			break
		}

		bp.offset += int64(bp.parsePos)
		bp.buf = bp.buf[bp.parsePos:]
		bp.parsePos = 0
	}

	root = &RootBlock{
		StartLine:   bp.lineno,
		StartOffset: bp.offset,
	}
	lp := newLineParser(&root.Block, bp.rules)
	lp.starts = bp.starts
	lp.maxDepth = bp.maxDepth
	lp.reset(0, bp.buf[:bp.parsePos], line)
	hasText := lp.openNewBlocks(true)
	if !root.isOpen() {
		// Single-line block.
		root.Source, root.EndOffset = bp.consume()
		return root, nil
	}
	if hasText {
		lp.addLineText()
	}

	// Parse subsequent lines.
	for {
		lineStart := bp.parsePos
		line := bp.readline()
		lp.reset(lineStart, bp.buf[:bp.parsePos], line)

		allMatched := lp.descendOpenBlocks()
		hasText := lp.openNewBlocks(allMatched)
		if lp.container == nil {
			root.Source, root.EndOffset = bp.consume()
			return root, nil
		}
		if hasText {
			lp.addLineText()
		}
	}
}

// descendOpenBlocks iterates through the open blocks,
// starting at the top-level block,
// and descending through last children down to the last open block.
// It sets p.container to the last matched block
// (the root itself if none of its children matched).
//
// This corresponds to the first step of [Phase 1]
// in the CommonMark recommended parsing strategy.
//
// [Phase 1]: https://spec.commonmark.org/0.30/#phase-1-block-structure
func (p *lineParser) descendOpenBlocks() (allMatched bool) {
	p.state = stateDescending
	p.container = nil
	parent := p.root
	child := parent.lastChild().Block()
	for child.isOpen() {
		rule := p.rules[child.Kind()]
		if rule.match == nil {
			p.container = parent
			return false
		}
		p.container = child
		if !rule.match(p) {
			p.container = parent
			return false
		}
		if p.state == stateDescendTerminated {
			return false
		}
		parent = child
		child = parent.lastChild().Block()
	}
	p.container = parent
	return true
}

// openNewBlocks looks for new block starts,
// closing any blocks unmatched in step 1
// before creating new blocks as descendants of the last matched container block.
// openNewBlocks sets p.container to the deepest open block.
//
// This corresponds to the second step of [Phase 1]
// in the CommonMark recommended parsing strategy.
//
// [Phase 1]: https://spec.commonmark.org/0.30/#phase-1-block-structure
func (p *lineParser) openNewBlocks(allMatched bool) (hasText bool) {
	if len(p.line) == 0 {
		// Special case: EOF. Close the root block.
		p.root.close(p.source, nil, p.lineStart, p.rules)
		p.container = nil
		return false
	}

	// If we didn't match everything in descendOpenBlocks,
	// we may need to close descendants if no new blocks were created.
	// (Creating a new block automatically closes prior open children.)
	if !allMatched {
		defer func() {
			// Special case: paragraph continuation text.
			// Rather than closing the unmatched paragraph,
			// move the container pointer to it.
			if !p.IsRestBlank() {
				if tip := findTip(p.root); tip.Kind() == ParagraphKind {
					p.container = tip
					return
				}
			}

			if p.container == nil {
				p.root.close(p.source, nil, p.lineStart, p.rules)
			} else {
				parent := p.container
				p.container.lastChild().Block().close(p.source, parent, p.lineStart, p.rules)
			}
		}()
	}

	p.state = stateOpening
openingLoop:
	for p.root.isOpen() &&
		(p.ContainerKind() == ParagraphKind || !p.rules[p.ContainerKind()].acceptsLines) {
		for _, startFunc := range p.starts {
			p.state = stateOpening
			startFunc(p)
			switch p.state {
			case stateOpenMatched:
				continue openingLoop
			case stateLineConsumed:
				return false
			}
		}
		// Hit the text.
		return true
	}
	return true
}

func (p *lineParser) addLineText() {
	isBlank := p.IsRestBlank()
	if lastChild := p.container.lastChild().Block(); lastChild != nil && isBlank {
		lastChild.lastLineBlank = true
	}
	lastLineBlank := isBlank && !(p.ContainerKind() == BlockQuoteKind ||
		p.ContainerKind() == FencedCodeBlockKind ||
		(p.ContainerKind() == ListItemKind && p.container.ChildCount() == 1 && p.container.span.Start == p.lineStart))
	for c, parent := p.container, findParent(p.root, p.container); c != nil; c, parent = parent, findParent(p.root, parent) {
		c.lastLineBlank = lastLineBlank
	}

	switch {
	case p.rules[p.ContainerKind()].acceptsLines:
		p.CollectInline(UnparsedKind, len(p.line)-p.i-p.Indent())
		return
	case !isBlank:
		// Create paragraph container for line.
		p.OpenBlock(ParagraphKind)
		p.ConsumeIndent(p.Indent())
		if p.container == nil {
			return
		}
	default:
		return
	}

	p.container.inlineChildren = append(p.container.inlineChildren, &Inline{
		kind: UnparsedKind,
		span: Span{Start: p.lineStart + p.i, End: p.lineStart + len(p.line)},
	})
}

func findParent(root, b *Block) *Block {
	var parent *Block
	curr := root
	for {
		if curr == nil {
			return nil
		}
		if curr == b {
			return parent
		}
		parent = curr
		curr = curr.lastChild().Block()
	}
}

// findTip finds the deepest open descendant of b.
func findTip(b *Block) *Block {
	var parent *Block
	for b.isOpen() {
		parent, b = b, b.lastChild().Block()
	}
	return parent
}

// readline reads the next line of input, growing p.buf as necessary.
// It will return a zero-length slice if and only if it has reached the end of input.
// After calling readline, p.lineno will contain the current line's number.
func (p *BlockParser) readline() []byte {
	const (
		chunkSize    = 8 * 1024
		maxBlockSize = 16 * 1024 * 1024
	)

	eolEnd := -1
	for {
		// Check if we have a line ending available.
		if i := bytes.IndexAny(p.buf[p.parsePos:], "\r\n"); i >= 0 {
			eolStart := p.parsePos + i
			if p.buf[eolStart] == '\n' {
				eolEnd = eolStart + 1
				break
			}
			if eolStart+1 < len(p.buf) {
				// Carriage return with enough buffer for 1 byte lookahead.
				eolEnd = eolStart + 1
				if p.buf[eolEnd] == '\n' {
					eolEnd++
				}
				break
			}
			if p.err != nil {
				// Carriage return right before EOF.
				eolEnd = len(p.buf)
				break
			}
		}

		// If we don't have any more line ending available,
		// but we're at EOF, return everything we have.
		if p.err != nil {
			eolEnd = len(p.buf)
			break
		}

		// If we're already at the maximum block size,
		// then drop the line and pretend it's an EOF.
		if len(p.buf) >= maxBlockSize {
			p.lineno++
			p.buf = p.buf[:p.parsePos]
			p.err = newParseError(MalformedInput, p.parsePos, fmt.Errorf("line %d: block too large", p.lineno))
			return nil
		}

		// Grab more data from the reader.
		newSize := len(p.buf) + chunkSize
		if newSize > maxBlockSize {
			newSize = maxBlockSize
		}
		if cap(p.buf) < newSize {
			newbuf := make([]byte, len(p.buf), newSize)
			copy(newbuf, p.buf)
			p.buf = newbuf
		}
		var n int
		n, p.err = p.r.Read(p.buf[len(p.buf):newSize])
		p.buf = p.buf[:len(p.buf)+n]
	}

	line := p.buf[p.parsePos:eolEnd]
	p.parsePos = eolEnd
	p.lineno++
	return line
}

// consume returns the bytes consumed so far for the current root block
// and the offset immediately after them, then slides the buffer forward.
func (p *BlockParser) consume() (source []byte, endOffset int64) {
	out := p.buf[:p.parsePos:p.parsePos]
	endOffset = p.offset + int64(p.parsePos)
	p.offset = endOffset
	p.buf = p.buf[p.parsePos:]
	p.parsePos = 0
	return out, endOffset
}

// columnWidth returns the width of the given text in columns
// given the 0-based column starting position.
func columnWidth(start int, b []byte) int {
	end := start
	for _, bi := range b {
		switch {
		case bi == '\t':
			// Assumes tabStopSize is a power-of-two.
			end = (end + tabStopSize) &^ (tabStopSize - 1)
		case bi&0x80 == 0:
			// End of code point or ASCII character.
			end++
		}
	}
	return end - start
}

func indentLength(line []byte) int {
	for i, b := range line {
		if b != ' ' && b != '\t' {
			return i
		}
	}
	return len(line)
}

func isBlankLine(line []byte) bool {
	for _, b := range line {
		if !(b == '\r' || b == '\n' || b == ' ' || b == '\t') {
			return false
		}
	}
	return true
}

func isSpaceTabOrLineEnding(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func hasTabOrSpacePrefixOrEOL(line []byte) bool {
	return len(line) == 0 ||
		line[0] == ' ' ||
		line[0] == '\t' ||
		line[0] == '\n' ||
		line[0] == '\r'
}

func hasBytePrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isEndEscaped reports whether s ends with an odd number of backslashes.
func isEndEscaped(s []byte) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}

// spanSlice returns source[s.Start:s.End], or nil if s is not valid or
// extends past the end of source.
func spanSlice(source []byte, s Span) []byte {
	return s.slice(source)
}
