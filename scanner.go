package tangle

import (
	"log/slog"
	"regexp"
	"strings"
)

type scanState int

const (
	stateOutside scanState = iota
	stateInExample
	stateInSrc
)

var (
	beginSrcRe     = regexp.MustCompile(`(?i)^begin_src(?:\s+(.*))?$`)
	endSrcRe       = regexp.MustCompile(`(?i)^end_src\s*$`)
	beginExampleRe = regexp.MustCompile(`(?i)^begin_example\s*$`)
	endExampleRe   = regexp.MustCompile(`(?i)^end_example\s*$`)
	nameRe         = regexp.MustCompile(`(?i)^name:\s*(\S+)\s*$`)
	propertyRe     = regexp.MustCompile(`(?i)^property:\s*header-args(?::(\S+))?\s*(.*)$`)
	sigilRe        = regexp.MustCompile(`^#\+(.*)$`)
)

// ScanDocument extracts FileProperties and Blocks from a single document's
// raw source text (§4.2). CRLF is normalized to LF before scanning.
func ScanDocument(path, raw string) (*Document, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")

	doc := &Document{
		Path:       path,
		Properties: FileProperties{},
	}

	state := stateOutside
	var pendingName string
	var cur *Block
	var curLines []string
	var curStart int

	flush := func(endLine int) {
		content := strings.Join(curLines, "\n")
		content = strings.TrimSuffix(content, "\n")
		cur.Content = content
		cur.StartLine = curStart
		cur.EndLine = endLine
		doc.Blocks = append(doc.Blocks, cur)
		cur = nil
		curLines = nil
	}

	for lineNo, line := range lines {
		n := lineNo + 1

		directive, isDirective := matchSigil(line)

		switch state {
		case stateOutside:
			if !isDirective {
				continue
			}

			switch {
			case beginExampleRe.MatchString(directive):
				state = stateInExample

			case propertyRe.MatchString(directive):
				m := propertyRe.FindStringSubmatch(directive)
				lang := m[1]
				if lang == "" {
					lang = "*"
				}
				_, args := ParseHeader(argsOnly(m[2]))
				doc.Properties[lang] = MergeArgs(doc.Properties[lang], args)

			case nameRe.MatchString(directive):
				m := nameRe.FindStringSubmatch(directive)
				pendingName = m[1]

			case beginSrcRe.MatchString(directive):
				m := beginSrcRe.FindStringSubmatch(directive)
				rest := ""
				if len(m) > 1 {
					rest = m[1]
				}
				language, blockArgs := ParseHeader(rest)

				merged := doc.Properties.Resolve(language)
				merged = MergeArgs(merged, blockArgs)

				b := &Block{
					Name:       pendingName,
					Language:   language,
					Args:       merged,
					SourcePath: path,
				}
				if ref := b.NowebRef(); ref != "" && !merged.Has("tangle") {
					b.Args = MergeArgs(merged, Args{"tangle": "no"})
				}

				cur = b
				curLines = nil
				curStart = n
				pendingName = ""
				state = stateInSrc

			default:
				// Unrecognized directive at column zero: ignored.
			}

		case stateInExample:
			if isDirective && endExampleRe.MatchString(directive) {
				state = stateOutside
			}

		case stateInSrc:
			if isDirective && endSrcRe.MatchString(directive) {
				flush(n)
				state = stateOutside
				continue
			}
			curLines = append(curLines, stripEscape(line))
		}
	}

	slog.Debug("scanned document", "path", path, "blocks", len(doc.Blocks))
	return doc, nil
}

// matchSigil reports whether line is a directive line: at column zero
// (leading whitespace disqualifies it), starting with the "#+" sigil.
func matchSigil(line string) (string, bool) {
	m := sigilRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// argsOnly turns the remainder of a "property: header-args[:LANG]"
// directive (the text after the optional language) into a string suitable
// for ParseHeader, prefixing a colon to the first key when it is missing.
// Later keys are passed through as they are and need their own colon.
func argsOnly(rest string) string {
	rest = strings.TrimSpace(rest)
	if rest == "" || strings.HasPrefix(rest, ":") {
		return rest
	}
	return ":" + rest
}

// stripEscape applies the content-line escape convention: a leading comma
// is elided, and ",#+" occurring right after a newline or a backtick is
// narrowed to "#+" (template-literal safety). Since we operate one line at
// a time, "after a newline" means "at the start of the line" here.
func stripEscape(line string) string {
	if strings.HasPrefix(line, ",") {
		line = line[1:]
	}
	return strings.ReplaceAll(line, "`,#+", "`#+")
}
