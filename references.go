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

// ReferenceMatcher reports which link reference definitions are defined
// for the purpose of resolving reference, collapsed, and shortcut links
// and images. [ReferenceMap] is the usual implementation.
type ReferenceMatcher interface {
	// MatchReference reports whether a link reference definition exists
	// for the given normalized label. Labels should be normalized with
	// [NormalizeLinkLabel] before being passed in.
	MatchReference(normalizedLabel string) bool
}

// LinkDefinition holds the destination and optional title
// parsed from a single [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap maps normalized link labels to the definitions collected
// from a document's [link reference definition]s.
// The zero value is an empty map.
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether m has a definition for normalizedLabel.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// Extract walks node's subtree, collecting every [LinkReferenceDefinitionKind]
// block it finds into m. Earlier definitions of a label take precedence over
// later ones, matching CommonMark's rule that the first matching definition wins.
func (m ReferenceMap) Extract(source []byte, node Node) ReferenceMap {
	if m == nil {
		m = make(ReferenceMap)
	}
	stack := []Node{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !n.IsValid() {
			continue
		}
		if block := n.Block(); block != nil && block.Kind() == LinkReferenceDefinitionKind {
			label := block.inlineChildren[0].LinkReference()
			if _, exists := m[label]; !exists {
				def := LinkDefinition{
					Destination: block.inlineChildren[1].Text(source),
				}
				if len(block.inlineChildren) > 2 {
					def.Title = block.inlineChildren[2].Text(source)
					def.TitlePresent = true
				}
				m[label] = def
			}
			continue
		}
		for i := n.ChildCount() - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return m
}
