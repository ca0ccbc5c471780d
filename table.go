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

import "bytes"

// tableBlockRules returns the [BlockRule] set that implements [GFM tables].
// It is wired into the parser by [GFM].
//
// A table is recognized late: the header row is first collected as an
// ordinary paragraph line, the same way a Setext heading's text line is.
// Only once the following line turns out to be a delimiter row does
// tableStart morph the paragraph into a [TableKind] block, the same trick
// [*BlockCursor.MorphSetext] uses for Setext headings.
//
// [GFM tables]: https://github.github.com/gfm/#tables-extension-
func tableBlockRules() []BlockRule {
	return []BlockRule{
		{
			Kind: TableKind,
			Start: tableStart,
			Continue: func(c *BlockCursor) bool {
				return !c.IsRestBlank()
			},
			CanContain: func(childKind BlockKind) bool {
				return childKind == TableHeadKind || childKind == TableBodyKind
			},
		},
		{
			Kind:     TableHeadKind,
			Continue: func(c *BlockCursor) bool { return false },
			CanContain: func(childKind BlockKind) bool {
				return childKind == TableRowKind
			},
		},
		{
			Kind:  TableBodyKind,
			Start: tableBodyRowStart,
			Continue: func(c *BlockCursor) bool {
				return !c.IsRestBlank()
			},
			CanContain: func(childKind BlockKind) bool {
				return childKind == TableRowKind
			},
		},
		{
			Kind:     TableRowKind,
			Continue: func(c *BlockCursor) bool { return false },
			CanContain: func(childKind BlockKind) bool {
				return childKind == TableCellKind
			},
		},
		{
			Kind:       TableCellKind,
			Continue:   func(c *BlockCursor) bool { return false },
			CanContain: func(childKind BlockKind) bool { return false },
		},
	}
}

// tableStart recognizes a table's delimiter row and, on success, rewrites
// the paragraph holding the header row (still open as the cursor's
// container) into a [TableKind] tree: a [TableHeadKind] wrapping
// one [TableRowKind] of header [TableCellKind] blocks.
func tableStart(c *BlockCursor) {
	if c.ContainerKind() != ParagraphKind {
		return
	}
	if c.Indent() >= codeBlockIndentLimit {
		return
	}
	container := c.Container()
	if container.ChildCount() != 1 {
		return
	}
	header := container.Child(0).Inline()
	if header == nil || header.Kind() != UnparsedKind {
		return
	}
	aligns := parseDelimiterRow(c.BytesAfterIndent())
	if aligns == nil {
		return
	}
	headerSpan := header.Span()
	headerCells := splitTableRow(headerSpan.Bytes(c.Source()))

	c.MorphToContainer(TableKind)
	c.SetTableAligns(aligns)
	c.OpenBlock(TableHeadKind)
	c.OpenBlock(TableRowKind)
	for i, align := range aligns {
		c.OpenBlock(TableCellKind)
		c.SetCellAlign(align, true)
		cellSpan := Span{Start: headerSpan.End, End: headerSpan.End}
		if i < len(headerCells) {
			cellSpan = Span{
				Start: headerSpan.Start + headerCells[i].Start,
				End:   headerSpan.Start + headerCells[i].End,
			}
		}
		c.CollectInlineSpan(UnparsedKind, cellSpan)
		c.EndBlock()
	}
	c.EndBlock() // TableRowKind
	c.EndBlock() // TableHeadKind
	c.ConsumeLine()
}

// tableBodyRowStart builds one [TableRowKind] of body [TableCellKind]
// blocks from the cursor's current line, opening a [TableBodyKind] first
// if the table doesn't have one yet.
//
// Cells beyond the table's column count (as fixed by the delimiter row)
// are dropped; missing trailing cells are left empty. Per [the GFM spec],
// but unlike it, any non-blank line continuing the table is treated as a
// row, even one without a single pipe character -- refining that match
// would require re-running the same lookahead the delimiter row already
// performed.
//
// [the GFM spec]: https://github.github.com/gfm/#tables-extension-
func tableBodyRowStart(c *BlockCursor) {
	switch c.ContainerKind() {
	case TableKind:
		c.OpenBlock(TableBodyKind)
	case TableBodyKind:
		// Already positioned; fall through.
	default:
		return
	}

	table := findParent(c.root, c.container)
	aligns := table.Aligns()

	indent := c.Indent()
	c.ConsumeIndent(indent)
	rest := c.BytesAfterIndent()
	cells := splitTableRow(rest)

	c.OpenBlock(TableRowKind)
	pos := 0
	for i, align := range aligns {
		c.OpenBlock(TableCellKind)
		c.SetCellAlign(align, false)
		if i < len(cells) {
			cell := cells[i]
			c.Advance(cell.Start - pos)
			c.CollectInline(UnparsedKind, cell.End-cell.Start)
			pos = cell.End
		}
		c.EndBlock()
	}
	c.EndBlock() // TableRowKind
	c.ConsumeLine()
}

// parseDelimiterRow reports the column alignments described by a GFM table
// delimiter row, such as "| :--- | ---: | :---: |", or nil if line does
// not have the shape of one. line may include leading indentation and
// the terminating line ending; both are ignored.
func parseDelimiterRow(line []byte) []CellAlign {
	line = trimEOL(line)
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	if line[0] == '|' {
		line = line[1:]
	}
	if len(line) > 0 && line[len(line)-1] == '|' {
		line = line[:len(line)-1]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	parts := bytes.Split(line, []byte{'|'})
	aligns := make([]CellAlign, 0, len(parts))
	for _, part := range parts {
		part = bytes.TrimSpace(part)
		if len(part) == 0 {
			return nil
		}
		left := part[0] == ':'
		right := part[len(part)-1] == ':'
		dashes := part
		if left {
			dashes = dashes[1:]
		}
		if right && len(dashes) > 0 {
			dashes = dashes[:len(dashes)-1]
		}
		if len(dashes) == 0 {
			return nil
		}
		for _, b := range dashes {
			if b != '-' {
				return nil
			}
		}
		switch {
		case left && right:
			aligns = append(aligns, AlignCenter)
		case left:
			aligns = append(aligns, AlignLeft)
		case right:
			aligns = append(aligns, AlignRight)
		default:
			aligns = append(aligns, AlignNone)
		}
	}
	return aligns
}

// splitTableRow splits a pipe-delimited table row into trimmed,
// relative-to-line cell spans, honoring a backslash-escaped pipe ("\|")
// as literal cell content rather than a separator. An optional leading or
// trailing (unescaped) pipe is stripped first. line includes the
// terminating line ending, the same as [*BlockCursor.BytesAfterIndent].
func splitTableRow(line []byte) []Span {
	line = trimEOL(line)
	start, stop := 0, len(line)
	if stop > start && line[start] == '|' {
		start++
	}
	if stop > start && line[stop-1] == '|' && !isEscapedPipe(line, stop-1) {
		stop--
	}

	var spans []Span
	cellStart := start
	for i := start; i < stop; i++ {
		if line[i] == '\\' && i+1 < stop {
			i++
			continue
		}
		if line[i] == '|' {
			spans = append(spans, trimCellSpan(line, cellStart, i))
			cellStart = i + 1
		}
	}
	spans = append(spans, trimCellSpan(line, cellStart, stop))
	return spans
}

// isEscapedPipe reports whether the pipe at line[i] is preceded by an odd
// number of backslashes, and so is itself a literal escaped character
// rather than a cell delimiter.
func isEscapedPipe(line []byte, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func trimCellSpan(line []byte, start, end int) Span {
	for start < end && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	for end > start && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	return Span{Start: start, End: end}
}

// trimEOL removes a trailing line ending from line.
func trimEOL(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
