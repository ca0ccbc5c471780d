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

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kirelane/mdcore/internal/htmlnorm"
)

func render(t *testing.T, opts *Options, input string) string {
	t.Helper()
	blocks, refMap, err := Parse([]byte(input), opts)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	buf := new(bytes.Buffer)
	if err := RenderHTML(buf, blocks, refMap); err != nil {
		t.Fatalf("RenderHTML(%q): %v", input, err)
	}
	return buf.String()
}

func checkRendersTo(t *testing.T, opts *Options, input, want string) {
	t.Helper()
	got := render(t, opts, input)
	gotNorm := string(htmlnorm.NormalizeHTML([]byte(got)))
	wantNorm := string(htmlnorm.NormalizeHTML([]byte(want)))
	if diff := cmp.Diff(wantNorm, gotNorm, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("input %q rendered (-want +got):\n%s\nfull output: %s", input, diff, got)
	}
}

func TestCommonMarkRendering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Emphasis",
			input: "Hello, *World*!\n",
			want:  "<p>Hello, <em>World</em>!</p>",
		},
		{
			name:  "Strong",
			input: "Hello, **World**!\n",
			want:  "<p>Hello, <strong>World</strong>!</p>",
		},
		{
			name:  "NestedEmphasis",
			input: "***really*** bold and italic\n",
			want:  "<p><em><strong>really</strong></em> bold and italic</p>",
		},
		{
			name:  "InlineLink",
			input: "[a link](/url \"title\")\n",
			want:  `<p><a href="/url" title="title">a link</a></p>`,
		},
		{
			name: "ReferenceLink",
			input: "Hello, [World][]!\n" +
				"\n" +
				"[World]: https://www.example.com/\n",
			want: `<p>Hello, <a href="https://www.example.com/">World</a>!</p>`,
		},
		{
			name:  "CodeSpan",
			input: "Use `fmt.Println`.\n",
			want:  "<p>Use <code>fmt.Println</code>.</p>",
		},
		{
			name:  "AutolinkURI",
			input: "<https://example.com>\n",
			want:  `<p><a href="https://example.com">https://example.com</a></p>`,
		},
		{
			name:  "AutolinkEmail",
			input: "<foo@bar.example.com>\n",
			want:  `<p><a href="mailto:foo@bar.example.com">foo@bar.example.com</a></p>`,
		},
		{
			name:  "ATXHeading",
			input: "## Title\n",
			want:  "<h2>Title</h2>",
		},
		{
			name: "BlockQuote",
			input: "> Quoted text.\n" +
				"> More.\n",
			want: "<blockquote>\n<p>Quoted text.\nMore.</p>\n</blockquote>",
		},
		{
			name: "TightList",
			input: "- one\n" +
				"- two\n",
			want: "<ul>\n<li>one</li>\n<li>two</li>\n</ul>",
		},
		{
			name: "LooseList",
			input: "- one\n" +
				"\n" +
				"- two\n",
			want: "<ul>\n<li>\n<p>one</p>\n</li>\n<li>\n<p>two</p>\n</li>\n</ul>",
		},
		{
			name:  "FencedCodeBlock",
			input: "```go\nfmt.Println(\"hi\")\n```\n",
			want:  "<pre><code class=\"language-go\">fmt.Println(&quot;hi&quot;)\n</code></pre>",
		},
		{
			name:  "ThematicBreak",
			input: "---\n",
			want:  "<hr>",
		},
		{
			name:  "HardLineBreak",
			input: "line one  \nline two\n",
			want:  "<p>line one<br>\nline two</p>",
		},
		{
			name:  "Escape",
			input: "\\*not emphasis\\*\n",
			want:  "<p>*not emphasis*</p>",
		},
		{
			name:  "EntityReference",
			input: "&copy; 2023\n",
			want:  "<p>© 2023</p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			checkRendersTo(t, nil, test.input, test.want)
		})
	}
}

func TestGFMRendering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Strikethrough",
			input: "~~deleted~~ text\n",
			want:  "<p><del>deleted</del> text</p>",
		},
		{
			name: "SimpleTable",
			input: "| foo | bar |\n" +
				"| --- | --- |\n" +
				"| baz | bim |\n",
			want: "<table>\n" +
				"<thead>\n<tr>\n<th>foo</th>\n<th>bar</th>\n</tr>\n</thead>\n" +
				"<tbody>\n<tr>\n<td>baz</td>\n<td>bim</td>\n</tr>\n</tbody>\n" +
				"</table>",
		},
		{
			name: "TableAlignment",
			input: "| abc | defghi |\n" +
				":-: | -----------:\n" +
				"bar | baz\n",
			want: "<table>\n" +
				`<thead>` + "\n" + `<tr>` + "\n" +
				`<th align="center">abc</th>` + "\n" +
				`<th align="right">defghi</th>` + "\n" +
				"</tr>\n</thead>\n<tbody>\n<tr>\n" +
				`<td align="center">bar</td>` + "\n" +
				`<td align="right">baz</td>` + "\n" +
				"</tr>\n</tbody>\n</table>",
		},
		{
			name: "TableMissingTrailingCell",
			input: "| a | b |\n" +
				"| - | - |\n" +
				"| 1 |\n",
			want: "<table>\n" +
				"<thead>\n<tr>\n<th>a</th>\n<th>b</th>\n</tr>\n</thead>\n" +
				"<tbody>\n<tr>\n<td>1</td>\n<td></td>\n</tr>\n</tbody>\n" +
				"</table>",
		},
		{
			name: "TableEndedByBlankLine",
			input: "| a |\n" +
				"| - |\n" +
				"\n" +
				"paragraph\n",
			want: "<table>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n</table>\n" +
				"<p>paragraph</p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			checkRendersTo(t, GFM(), test.input, test.want)
		})
	}
}

func TestSoftBreakBehavior(t *testing.T) {
	tests := []struct {
		name     string
		behavior SoftBreakBehavior
		input    string
		want     string
	}{
		{
			name:     "PreserveLF",
			behavior: SoftBreakPreserve,
			input:    "Hello\nWorld!\n",
			want:     "<p>Hello\nWorld!</p>",
		},
		{
			name:     "Space",
			behavior: SoftBreakSpace,
			input:    "Hello\nWorld!\n",
			want:     "<p>Hello World!</p>",
		},
		{
			name:     "Harden",
			behavior: SoftBreakHarden,
			input:    "Hello\nWorld!\n",
			want:     "<p>Hello<br>\nWorld!</p>",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			blocks, refMap, err := Parse([]byte(test.input), nil)
			if err != nil {
				t.Fatal(err)
			}
			r := &HTMLRenderer{
				ReferenceMap:      refMap,
				SoftBreakBehavior: test.behavior,
			}
			buf := new(bytes.Buffer)
			if err := r.Render(buf, blocks); err != nil {
				t.Fatal(err)
			}
			got := string(htmlnorm.NormalizeHTML(buf.Bytes()))
			want := string(htmlnorm.NormalizeHTML([]byte(test.want)))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("render (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIgnoreRaw(t *testing.T) {
	blocks, refMap, err := Parse([]byte("Hello <strong>World</strong>!\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := &HTMLRenderer{ReferenceMap: refMap, IgnoreRaw: true}
	buf := new(bytes.Buffer)
	if err := r.Render(buf, blocks); err != nil {
		t.Fatal(err)
	}
	got := string(htmlnorm.NormalizeHTML(buf.Bytes()))
	want := string(htmlnorm.NormalizeHTML([]byte("<p>Hello World!</p>")))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render (-want +got):\n%s", diff)
	}
}
