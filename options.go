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

import "math"

// BlockRule extends the block parser with a custom block type.
// Rules are tried in the order they appear in [Options.BlockRules],
// after the built-in CommonMark block starts have all failed to match.
//
// A BlockRule is the public analogue of the package's built-in
// block-start/continuation tables; [BlockCursor] exposes exactly the
// methods those built-in rules use, so a custom rule reads no differently
// from the code in this package that implements, say, block quotes.
type BlockRule struct {
	// Kind is the [BlockKind] this rule produces. It must not collide
	// with one of the built-in kinds.
	Kind BlockKind
	// Start attempts to recognize the rule's block at the cursor's
	// current position on a new line. It behaves like one of the
	// closures in the package's built-in block-start table: it should
	// call [*BlockCursor.OpenBlock] (or a more specific Open* method)
	// only once it has committed to matching.
	Start func(c *BlockCursor)
	// Continue reports whether the cursor's current line continues a
	// block of this Kind. It behaves like a built-in blockRule.match
	// function. A nil Continue means the block never accepts
	// continuation lines (e.g. a thematic break).
	Continue func(c *BlockCursor) bool
	// CanContain reports whether a block of this Kind can contain a
	// child block of the given kind.
	CanContain func(childKind BlockKind) bool
	// AcceptsLines reports whether unmatched lines should be collected
	// as literal inline content rather than triggering new block starts.
	AcceptsLines bool
}

// InlineRule extends the inline parser with a custom single-byte
// delimiter run, the same way GFM extends CommonMark with
// strikethrough's "~~". Only one delimiter rule may be registered per
// byte value.
type InlineRule struct {
	// Delimiter is the byte that opens and closes a run recognized by
	// this rule, e.g. '~'.
	Delimiter byte
	// MinRun and MaxRun bound the number of consecutive Delimiter bytes
	// that form a single run recognized by this rule.
	MinRun, MaxRun int
	// Kind is the [InlineKind] produced when a run opens and later closes.
	Kind InlineKind
}

// Options configures a [BlockParser], [Parse], or [*InlineParser].
// The zero value behaves like [CommonMark]() except that Escape is false.
type Options struct {
	// Escape controls whether literal text content is HTML-escaped
	// ('&', '<', '>', '"', '\'') when a tree parsed with these options is
	// later rendered. [CommonMark] and [GFM] set this to true, matching
	// the format's default; callers constructing an Options literal get
	// false unless they set it explicitly. The corresponding renderer
	// knob is [HTMLRenderer.NoEscape], which is the inverse.
	Escape bool
	// BlockRules are tried, in order, for each new line,
	// after all built-in block starts have failed to match.
	BlockRules []BlockRule
	// InlineRules are additional delimiter-run rules
	// tried alongside '*', '_', and brackets.
	InlineRules []InlineRule
	// MaxContainerDepth limits how deeply block containers
	// (block quotes and list items) may nest.
	// Zero means no limit.
	MaxContainerDepth int
	// MaxDelimiterStackDepth limits how many open link/image brackets
	// may be outstanding at once while parsing a single block's
	// inline content; emphasis delimiters are not counted.
	// Zero means no limit.
	MaxDelimiterStackDepth int

	blockRules  map[BlockKind]blockRule
	blockStarts []func(*lineParser)
	inlineRules map[byte]InlineRule
}

// CommonMark returns parser options implementing plain CommonMark 0.30,
// with no GFM extensions.
func CommonMark() *Options {
	return &Options{Escape: true}
}

// GFM returns parser options implementing CommonMark 0.30
// plus the [GitHub Flavored Markdown] table and strikethrough extensions.
//
// [GitHub Flavored Markdown]: https://github.github.com/gfm/
func GFM() *Options {
	opts := &Options{
		Escape:     true,
		BlockRules: tableBlockRules(),
		InlineRules: []InlineRule{
			{Delimiter: '~', MinRun: 1, MaxRun: 2, Kind: StrikethroughKind},
		},
	}
	return opts
}

// orDefault returns opts, or a freshly allocated [CommonMark] options
// if opts is nil.
func (opts *Options) orDefault() *Options {
	if opts == nil {
		return CommonMark()
	}
	return opts
}

func (opts *Options) blockRuleTable() map[BlockKind]blockRule {
	if opts.blockRules != nil {
		return opts.blockRules
	}
	if len(opts.BlockRules) == 0 {
		opts.blockRules = defaultBlockRules
		return opts.blockRules
	}
	merged := make(map[BlockKind]blockRule, len(defaultBlockRules)+len(opts.BlockRules))
	for k, v := range defaultBlockRules {
		merged[k] = v
	}
	for _, r := range opts.BlockRules {
		merged[r.Kind] = blockRule{
			match:        r.Continue,
			canContain:   r.CanContain,
			acceptsLines: r.AcceptsLines,
		}
	}
	opts.blockRules = merged
	return merged
}

func (opts *Options) blockStartTable() []func(*lineParser) {
	if opts.blockStarts != nil {
		return opts.blockStarts
	}
	if len(opts.BlockRules) == 0 {
		opts.blockStarts = defaultBlockStarts
		return opts.blockStarts
	}
	starts := make([]func(*lineParser), 0, len(defaultBlockStarts)+len(opts.BlockRules))
	starts = append(starts, defaultBlockStarts...)
	for _, r := range opts.BlockRules {
		r := r
		if r.Start != nil {
			starts = append(starts, r.Start)
		}
	}
	opts.blockStarts = starts
	return starts
}

func (opts *Options) inlineRuleTable() map[byte]InlineRule {
	if opts.inlineRules != nil {
		return opts.inlineRules
	}
	m := make(map[byte]InlineRule, len(opts.InlineRules))
	for _, r := range opts.InlineRules {
		m[r.Delimiter] = r
	}
	opts.inlineRules = m
	return m
}

func (opts *Options) maxContainerDepth() int {
	if opts == nil || opts.MaxContainerDepth <= 0 {
		return math.MaxInt
	}
	return opts.MaxContainerDepth
}

func (opts *Options) maxDelimiterStackDepth() int {
	if opts == nil || opts.MaxDelimiterStackDepth <= 0 {
		return math.MaxInt
	}
	return opts.MaxDelimiterStackDepth
}
