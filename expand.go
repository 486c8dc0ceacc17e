package tangle

import (
	"regexp"
	"strings"
)

var referenceLineRe = regexp.MustCompile(`^([ \t]*)<<([^<>]+)>>(.*)$`)

// Expand performs indentation-preserving noweb substitution (§4.4) over
// content, using idx to resolve "<<name>>" reference lines. outerIndent is
// the indentation already accumulated by the enclosing reference site (""
// at the top of a target). stack tracks names currently being expanded on
// this call chain, for cycle detection; pass a fresh map per top-level call.
func Expand(content string, idx ReferenceIndex, outerIndent string, stack map[string]bool) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		m := referenceLineRe.FindStringSubmatch(line)
		if m == nil {
			out = append(out, outerIndent+line)
			continue
		}

		indent, name, trailing := m[1], m[2], m[3]
		totalIndent := outerIndent + indent

		if stack[name] {
			out = append(out, totalIndent+"/* ERROR: Circular reference to "+name+" */"+trailing)
			continue
		}

		blocks := idx[name]
		if len(blocks) == 0 {
			// Unresolved reference: preserved literally so downstream
			// tooling can grep for it.
			out = append(out, totalIndent+"<<"+name+">>"+trailing)
			continue
		}

		stack[name] = true
		parts := make([]string, 0, len(blocks))
		for _, blk := range blocks {
			parts = append(parts, Expand(blk.Content, idx, totalIndent, stack))
		}
		delete(stack, name)

		joined := appendTrailing(strings.Join(parts, "\n\n"), trailing)
		out = append(out, strings.Split(joined, "\n")...)
	}

	return strings.Join(out, "\n")
}

// appendTrailing appends trailing text (if any) to the last line of s, per
// the documented (open-question) behavior: trailing text after a reference
// attaches to the last emitted line of its expansion, even when that
// expansion itself ends with a blank line.
func appendTrailing(s, trailing string) string {
	if trailing == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	lines[len(lines)-1] += trailing
	return strings.Join(lines, "\n")
}
