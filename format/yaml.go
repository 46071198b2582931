/*************************************************************************
 * Copyright 2026 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package format

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gravwell/skiptape/errs"
	"github.com/gravwell/skiptape/schema"
	"github.com/gravwell/skiptape/tape"
)

// yamlFrame is one open block container on the indentation stack.
// pending frames have not yet decided object-vs-array: a "key:" or
// "- " line with nothing inline opens a frame lazily and only
// materializes it once the following line's shape (dash or mapping) is
// known, matching how real YAML decides a nested block's kind from its
// first child rather than the header line itself.
type yamlFrame struct {
	indent   int
	openIdx  int
	depth    int
	isArray  bool
	arrIdx   int
	pending  bool
	skipping bool
	isRoot   bool
	anchor   string
	path     schema.Path
}

type yamlAnchorRange struct {
	start, end, depth int
}

// yamlLazyRef is an alias recorded under AliasLazy, whose target is
// resolved only after the whole document has been parsed (spec
// §4.6.3's "defer" strategy).
type yamlLazyRef struct {
	owner  string
	target string
	pos    int64
}

// yamlParser holds the state ParseYAML threads through a document: the
// indentation stack (format/json.go's and format/toon.go's frame-stack
// shape, generalized to YAML's lazily-typed blocks), the anchor table
// used to resolve aliases, and the reference graph used to detect
// cyclic anchors once a whole document is in hand.
type yamlParser struct {
	tp       *tape.Tape
	sch      *schema.Schema
	opt      Options
	stack    []yamlFrame
	anchors  map[string]yamlAnchorRange
	refGraph map[string][]string
	lazy     []yamlLazyRef
}

// ParseYAML implements the indentation-based YAML adapter of spec
// §4.6.3. Block sequences ("- item") and block mappings ("key:
// value") nest via leading-space indent the way format/toon.go's
// "key: value" blocks do; tabs in leading position are Malformed.
// "---" starts a new document and emits YamlDocumentStart. Anchors
// (&name) and aliases (*name) are tracked in an anchor table; how an
// alias is resolved is governed by opt.Alias (spec §4.6.3):
// AliasInline splices a copy of the anchor's tape nodes in place,
// AliasPreserve emits a YamlAlias marker requiring the anchor to
// already be defined, and AliasLazy emits the same marker but defers
// both existence and cycle checking to the end of the parse, which is
// the only mode under which Malformed{cyclic_anchor} is reachable: an
// immediate strategy can never see a forward reference in the first
// place, so any cycle it could form was already rejected as
// anchor_not_found.
func ParseYAML(data []byte, opt Options) (*tape.Tape, error) {
	p := &yamlParser{
		tp:       opt.newTape(errs.Yaml),
		sch:      opt.Schema,
		opt:      opt,
		anchors:  make(map[string]yamlAnchorRange),
		refGraph: make(map[string][]string),
	}
	p.stack = []yamlFrame{{indent: -1, depth: 0, pending: true, isRoot: true, path: schema.Path{}}}

	for _, ln := range splitLines(data) {
		raw := data[ln[0]:ln[1]]
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		if hasLeadingTab(raw) {
			return nil, errs.MalformedAt(errs.Yaml, int64(ln[0]), "tab in leading indentation")
		}
		indent := leadingSpaceCount(raw)
		content := stripYamlComment(strings.TrimSpace(string(raw)))
		if content == "" {
			continue
		}

		if content == "---" {
			p.closeDocument()
			p.tp.PushMarker(tape.YamlDocumentStart, 0, 0)
			p.stack = []yamlFrame{{indent: -1, depth: 0, pending: true, isRoot: true, path: schema.Path{}}}
			continue
		}
		if content == "..." {
			continue
		}

		for len(p.stack) > 0 && !p.stack[len(p.stack)-1].isRoot && p.stack[len(p.stack)-1].indent >= indent {
			top := p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.closeFrame(top)
		}

		parent := &p.stack[len(p.stack)-1]
		if parent.pending {
			isArr := strings.HasPrefix(content, "-") && (content == "-" || strings.HasPrefix(content, "- "))
			kind := tape.ObjectStart
			if isArr {
				kind = tape.ArrayStart
			}
			parent.openIdx = p.tp.PushStart(kind, parent.depth)
			parent.isArray = isArr
			parent.pending = false
		}
		if parent.skipping {
			continue
		}

		if rest, ok := yamlSplitDash(content); ok {
			if !parent.isArray {
				return nil, errs.MalformedAt(errs.Yaml, int64(ln[0]), "sequence item outside array context")
			}
			if err := p.handleSequenceItem(indent, rest, int64(ln[0])); err != nil {
				return nil, err
			}
			continue
		}

		if err := p.handleKeyLine(indent, content, int64(ln[0])); err != nil {
			return nil, err
		}
	}

	p.closeDocument()
	if err := p.finalizeLazy(); err != nil {
		return nil, err
	}
	return p.tp, nil
}

// closeDocument pops every frame still open, including the root, used
// both at a "---" boundary and at end of input.
func (p *yamlParser) closeDocument() {
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		p.closeFrame(top)
	}
}

func (p *yamlParser) closeFrame(f yamlFrame) {
	if f.skipping {
		return
	}
	if f.pending {
		if f.isRoot {
			return
		}
		idx := p.tp.PushNull(f.depth)
		if f.anchor != "" {
			p.anchors[f.anchor] = yamlAnchorRange{start: idx, end: idx + 1, depth: f.depth}
		}
		return
	}
	if f.isArray {
		p.tp.PushEnd(tape.ArrayEnd, f.depth, f.openIdx)
	} else {
		p.tp.PushEnd(tape.ObjectEnd, f.depth, f.openIdx)
	}
	if f.anchor != "" {
		p.anchors[f.anchor] = yamlAnchorRange{start: f.openIdx, end: p.tp.Len(), depth: f.depth}
	}
}

func (p *yamlParser) ownerAnchor() string {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].anchor != "" {
			return p.stack[i].anchor
		}
	}
	return ""
}

// handleKeyLine processes one "key: value", "key:", or "key: &a ..."
// line against the current top-of-stack container, shared by both
// block-mapping lines and the inline "- key: value" sequence-item
// form (the caller has already opened the item's object frame in the
// latter case).
func (p *yamlParser) handleKeyLine(indent int, content string, pos int64) error {
	parent := &p.stack[len(p.stack)-1]
	key, valuePart, hasValue := splitYamlKeyValue(content)
	p.tp.PushKey(parent.depth+1, []byte(key))
	childPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Key(key))

	anchorName, remainder := "", valuePart
	if hasValue {
		if name, rest, ok := yamlExtractAnchor(valuePart); ok {
			anchorName, remainder = name, rest
		}
	}

	switch {
	case !hasValue || remainder == "":
		if decide(p.sch, childPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(content))
			p.stack = append(p.stack, yamlFrame{indent: indent, skipping: true, path: childPath})
			return nil
		}
		p.stack = append(p.stack, yamlFrame{indent: indent, depth: parent.depth + 1, path: childPath, anchor: anchorName, pending: true})
		return nil
	case yamlIsAlias(remainder):
		name := yamlAliasName(remainder)
		if decide(p.sch, childPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(remainder))
			return nil
		}
		return p.resolveAlias(name, parent.depth+1, pos)
	default:
		if decide(p.sch, childPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(remainder))
			return nil
		}
		idx := pushYamlScalar(p.tp, parent.depth+1, remainder)
		if anchorName != "" {
			p.anchors[anchorName] = yamlAnchorRange{start: idx, end: idx + 1, depth: parent.depth + 1}
		}
		return nil
	}
}

// handleSequenceItem processes the content of one "- ..." line already
// stripped of its leading dash.
func (p *yamlParser) handleSequenceItem(indent int, rest string, pos int64) error {
	parent := &p.stack[len(p.stack)-1]
	idx := parent.arrIdx
	parent.arrIdx++
	itemPath := append(parent.path[:len(parent.path):len(parent.path)], schema.Index(idx))

	anchorName, remainder := "", rest
	if name, r2, ok := yamlExtractAnchor(rest); ok {
		anchorName, remainder = name, r2
	}

	switch {
	case remainder == "":
		if decide(p.sch, itemPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(rest))
			p.stack = append(p.stack, yamlFrame{indent: indent, skipping: true, path: itemPath})
			return nil
		}
		p.stack = append(p.stack, yamlFrame{indent: indent, depth: parent.depth + 1, path: itemPath, anchor: anchorName, pending: true})
		return nil
	case yamlIsAlias(remainder):
		name := yamlAliasName(remainder)
		if decide(p.sch, itemPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(remainder))
			return nil
		}
		return p.resolveAlias(name, parent.depth+1, pos)
	case yamlLooksLikeMapping(remainder):
		if decide(p.sch, itemPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(rest))
			p.stack = append(p.stack, yamlFrame{indent: indent, skipping: true, path: itemPath})
			return nil
		}
		oi := p.tp.PushStart(tape.ObjectStart, parent.depth+1)
		p.stack = append(p.stack, yamlFrame{indent: indent, openIdx: oi, depth: parent.depth + 1, path: itemPath, anchor: anchorName})
		return p.handleKeyLine(indent, remainder, pos)
	default:
		if decide(p.sch, itemPath) == decideSkip {
			p.tp.PushSkipMarker(parent.depth+1, len(remainder))
			return nil
		}
		vi := pushYamlScalar(p.tp, parent.depth+1, remainder)
		if anchorName != "" {
			p.anchors[anchorName] = yamlAnchorRange{start: vi, end: vi + 1, depth: parent.depth + 1}
		}
		return nil
	}
}

// resolveAlias applies opt.Alias to a *name reference at depth. Under
// AliasInline/AliasPreserve the anchor must already be in p.anchors
// (forward references are Malformed{anchor_not_found} immediately);
// AliasLazy instead queues the reference for finalizeLazy.
func (p *yamlParser) resolveAlias(name string, depth int, pos int64) error {
	if p.opt.Alias == AliasLazy {
		p.lazy = append(p.lazy, yamlLazyRef{owner: p.ownerAnchor(), target: name, pos: pos})
		idx := p.tp.PushMarker(tape.YamlAlias, depth, 1)
		p.tp.AddSidecar(idx, tape.YamlAliasTarget, name)
		return nil
	}

	anc, ok := p.anchors[name]
	if !ok {
		return errs.MalformedAt(errs.Yaml, pos, "anchor not found: "+name)
	}
	if owner := p.ownerAnchor(); owner != "" {
		p.refGraph[owner] = append(p.refGraph[owner], name)
	}
	if p.opt.Alias == AliasInline {
		delta := depth - anc.depth
		for i := anc.start; i < anc.end; i++ {
			n := p.tp.Nodes[i]
			n.Depth = uint8(int(n.Depth) + delta)
			p.tp.Nodes = append(p.tp.Nodes, n)
		}
		return nil
	}
	idx := p.tp.PushMarker(tape.YamlAlias, depth, 0)
	p.tp.AddSidecar(idx, tape.YamlAliasTarget, name)
	return nil
}

// finalizeLazy resolves every AliasLazy reference once the full
// document (and therefore every anchor definition, forward or not) is
// known: a target that never appeared is Malformed{anchor_not_found},
// and a reference cycle among anchors that contain each other's
// aliases is Malformed{cyclic_anchor}.
func (p *yamlParser) finalizeLazy() error {
	for _, ref := range p.lazy {
		if _, ok := p.anchors[ref.target]; !ok {
			return errs.MalformedAt(errs.Yaml, ref.pos, "anchor not found: "+ref.target)
		}
		if ref.owner != "" {
			p.refGraph[ref.owner] = append(p.refGraph[ref.owner], ref.target)
		}
	}
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(p.refGraph))
	var visit func(name string) bool
	visit = func(name string) bool {
		switch state[name] {
		case visiting:
			return true
		case done:
			return false
		}
		state[name] = visiting
		for _, next := range p.refGraph[name] {
			if visit(next) {
				return true
			}
		}
		state[name] = done
		return false
	}
	for name := range p.refGraph {
		if visit(name) {
			return errs.MalformedAt(errs.Yaml, -1, "cyclic anchor reference: "+name)
		}
	}
	return nil
}

func yamlSplitDash(content string) (rest string, ok bool) {
	if content == "-" {
		return "", true
	}
	if strings.HasPrefix(content, "- ") {
		return strings.TrimSpace(content[2:]), true
	}
	return content, false
}

func yamlExtractAnchor(value string) (name, rest string, ok bool) {
	if !strings.HasPrefix(value, "&") {
		return "", value, false
	}
	i := strings.IndexByte(value, ' ')
	if i < 0 {
		return value[1:], "", true
	}
	return value[1:i], strings.TrimSpace(value[i+1:]), true
}

func yamlIsAlias(value string) bool { return strings.HasPrefix(value, "*") }

func yamlAliasName(value string) string { return strings.TrimSpace(value[1:]) }

// yamlLooksLikeMapping reports whether the remainder of a "- ..." line
// itself opens a "key: value" or "key:" pair, making the sequence item
// a one-line mapping rather than a bare scalar.
func yamlLooksLikeMapping(s string) bool {
	_, _, has := splitYamlKeyValue(s)
	if has {
		return true
	}
	return strings.HasSuffix(s, ":")
}

// splitYamlKeyValue finds the first ':' that separates a mapping key
// from its value, i.e. one followed by a space or end of line, so a
// colon embedded in an unquoted scalar like a URL does not split it.
func splitYamlKeyValue(content string) (key, value string, hasValue bool) {
	i := -1
	for search := 0; search < len(content); {
		j := strings.IndexByte(content[search:], ':')
		if j < 0 {
			break
		}
		idx := search + j
		if idx+1 == len(content) || content[idx+1] == ' ' {
			i = idx
			break
		}
		search = idx + 1
	}
	if i < 0 {
		return content, "", false
	}
	key = strings.TrimSpace(content[:i])
	rest := strings.TrimSpace(content[i+1:])
	if rest == "" {
		return key, "", false
	}
	return key, rest, true
}

func stripYamlComment(raw string) string {
	inSingle, inDouble := false, false
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if !inSingle && !inDouble && (i == 0 || raw[i-1] == ' ') {
				return strings.TrimRight(raw[:i], " ")
			}
		}
	}
	return raw
}

func pushYamlScalar(tp *tape.Tape, depth int, raw string) int {
	switch raw {
	case "null", "~":
		return tp.PushNull(depth)
	case "true":
		return tp.PushBool(depth, true)
	case "false":
		return tp.PushBool(depth, false)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return tp.PushNumber(depth, n)
	}
	unquoted := raw
	if len(raw) >= 2 && ((raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'')) {
		unquoted = raw[1 : len(raw)-1]
	}
	return tp.PushString(depth, []byte(unquoted))
}
