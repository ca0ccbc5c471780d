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
	"errors"
	"testing"
)

func TestNormalizeLinkLabel(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"Foo", "foo"},
		{"  Foo  Bar  ", "foo bar"},
		{"Foo\tBar\nBaz", "foo bar baz"},
		{"", ""},
		{"FOO", "foo"},
	}
	for _, test := range tests {
		if got := NormalizeLinkLabel(test.s); got != test.want {
			t.Errorf("NormalizeLinkLabel(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}

func TestIsEmailAddress(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"foo@bar.example.com", true},
		{"foo+special@Bar.baz-bar0.com", true},
		{"@bar.example.com", false},
		{"foo@", false},
		{"foo", false},
		{"foo @bar.com", false},
		{"foo@bar", true},
	}
	for _, test := range tests {
		if got := IsEmailAddress(test.s); got != test.want {
			t.Errorf("IsEmailAddress(%q) = %t; want %t", test.s, got, test.want)
		}
	}
}

func TestDecodeInlineText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"hello", "hello"},
		{`\*not emphasis\*`, "*not emphasis*"},
		{"&copy;", "©"},
		{"&amp;", "&"},
		{"&#65;", "A"},
		{"&#x41;", "A"},
		{"&notanentity;", "&notanentity;"},
		{`\a`, `\a`},
	}
	for _, test := range tests {
		if got := decodeInlineText([]byte(test.raw)); got != test.want {
			t.Errorf("decodeInlineText(%q) = %q; want %q", test.raw, got, test.want)
		}
	}
}

func TestIsASCIIPunctuation(t *testing.T) {
	tests := []struct {
		c    byte
		want bool
	}{
		{'!', true},
		{'*', true},
		{'~', true},
		{'a', false},
		{'0', false},
		{' ', false},
	}
	for _, test := range tests {
		if got := isASCIIPunctuation(test.c); got != test.want {
			t.Errorf("isASCIIPunctuation(%q) = %t; want %t", test.c, got, test.want)
		}
	}
}

func TestNormalizeCodeSpanContent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"foo", "foo"},
		{" foo ", "foo"},
		{"  foo  ", " foo "},
		{" ", " "},
		{"   ", "   "},
		{"foo\nbar", "foo bar"},
		{"foo\r\nbar", "foo bar"},
		{"foo\rbar", "foo bar"},
	}
	for _, test := range tests {
		if got := normalizeCodeSpanContent([]byte(test.raw)); got != test.want {
			t.Errorf("normalizeCodeSpanContent(%q) = %q; want %q", test.raw, got, test.want)
		}
	}
}

func TestInlineRendering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "EmDelimiterRunNotMultipleOfThree", input: "**foo*bar***\n", want: "<p><strong>foo<em>bar</em></strong></p>"},
		{name: "CodeSpanStripsSingleSurroundingSpace", input: "`` ` ``\n", want: "<p><code>`</code></p>"},
		{name: "CodeSpanAllSpacesNotStripped", input: "`  `\n", want: "<p><code>  </code></p>"},
		{name: "CodeSpanCollapsesLineEndings", input: "`foo\nbar`\n", want: "<p><code>foo bar</code></p>"},
		{name: "IntrawordUnderscoreNotEmphasis", input: "foo_bar_baz\n", want: "<p>foo_bar_baz</p>"},
		{name: "ImageInsideLinkText", input: "[![moon](moon.jpg)](/uri)\n", want: `<p><a href="/uri"><img src="moon.jpg" alt="moon"></a></p>`},
		{name: "ShortcutReference", input: "[foo]\n\n[foo]: /url\n", want: `<p><a href="/url">foo</a></p>`},
		{name: "CollapsedReference", input: "[foo][]\n\n[foo]: /url\n", want: `<p><a href="/url">foo</a></p>`},
		{name: "UnmatchedBracketIsLiteral", input: "]not a link\n", want: "<p>]not a link</p>"},
		{name: "NestedLinksNotAllowed", input: "[a [b](/b) c](/a)\n", want: `<p>[a <a href="/b">b</a> c](/a)</p>`},
		{name: "HardLineBreakBackslash", input: "foo\\\nbar\n", want: "<p>foo<br>\nbar</p>"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) { checkRendersTo(t, nil, test.input, test.want) })
	}
}

func TestMaxDelimiterStackDepth(t *testing.T) {
	input := "[a[b[c[d\n"
	opts := &Options{MaxDelimiterStackDepth: 2}
	_, _, err := Parse([]byte(input), opts)
	if err == nil {
		t.Fatal("Parse succeeded; want DepthExceeded error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a *ParseError", err)
	}
	if !errors.Is(pe, &ParseError{Kind: DepthExceeded}) {
		t.Errorf("error kind = %v; want DepthExceeded", pe.Kind)
	}
}
