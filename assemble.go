package tangle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// languageExtensions is the enumerated language-to-extension contract
// from §4.5. An unknown language maps to ".txt".
var languageExtensions = map[string]string{
	"typescript": ".ts",
	"javascript": ".js",
	"python":     ".py",
	"rust":       ".rs",
	"go":         ".go",
	"java":       ".java",
	"c":          ".c",
	"cpp":        ".cpp",
	"sh":         ".sh",
	"bash":       ".sh",
	"ruby":       ".rb",
	"json":       ".json",
	"yaml":       ".yaml",
	"yml":        ".yml",
	"markdown":   ".md",
	"org":        ".org",
}

// LanguageExtension resolves a block's fence language to an output file
// extension, defaulting to ".txt" for anything unrecognized.
func LanguageExtension(language string) string {
	if ext, ok := languageExtensions[strings.ToLower(language)]; ok {
		return ext
	}
	return ".txt"
}

// noCommentExtensions never receive framing, regardless of block options.
var noCommentExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".md":   true,
	".org":  true,
	".wasm": true,
	".txt":  true,
}

type commentPair struct {
	lead, trail string
}

var commentStyles = map[string]commentPair{
	".py": {"#", ""}, ".sh": {"#", ""}, ".bash": {"#", ""}, ".zsh": {"#", ""},
	".fish": {"#", ""}, ".toml": {"#", ""}, ".rb": {"#", ""}, ".pl": {"#", ""}, ".r": {"#", ""},
	".lisp": {";;", ""}, ".el": {";;", ""}, ".clj": {";;", ""}, ".scm": {";;", ""},
	".lua": {"--", ""}, ".sql": {"--", ""}, ".hs": {"--", ""},
	".css":  {"/*", "*/"},
	".html": {"<!--", "-->"}, ".xml": {"<!--", "-->"},
}

// commentStyle returns the lead/trail framing markers for ext, and whether
// framing applies at all (false for the no-comment set and binary .wasm).
func commentStyle(ext string) (lead, trail string, ok bool) {
	ext = strings.ToLower(ext)
	if noCommentExtensions[ext] {
		return "", "", false
	}
	if pair, found := commentStyles[ext]; found {
		return pair.lead, pair.trail, true
	}
	return "//", "", true
}

func frame(lead, trail, text string) string {
	if trail == "" {
		return lead + " " + text
	}
	return lead + " " + text + " " + trail
}

// tangleDirective interprets a block's "tangle" key: skip reports whether
// the block contributes to no target at all; derive reports whether the
// output path must be derived from the document basename + language
// extension; path is the explicit path string otherwise.
func tangleDirective(b *Block) (skip, derive bool, path string) {
	if !b.Args.Has("tangle") {
		return true, false, ""
	}
	if v, ok := b.Args.Bool("tangle"); ok {
		if !v {
			return true, false, ""
		}
		return false, true, ""
	}

	s := b.Args.String("tangle")
	switch strings.ToLower(s) {
	case "no", "false":
		return true, false, ""
	case "yes", "true":
		return false, true, ""
	default:
		return false, false, s
	}
}

func commentsSuppressed(b *Block) bool {
	if v, ok := b.Args.Bool("comments"); ok {
		return !v
	}
	s := strings.ToLower(b.Args.String("comments"))
	return s == "no" || s == "false"
}

// Assemble groups blocks into output Targets (§4.5), in the order their
// output paths were first discovered across documents.
func Assemble(docs []*Document) []*Target {
	var order []string
	targets := map[string]*Target{}

	for _, doc := range docs {
		dir := filepath.Dir(doc.Path)
		base := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))

		for _, b := range doc.Blocks {
			skip, derive, path := tangleDirective(b)
			if skip {
				continue
			}

			var outPath string
			switch {
			case derive:
				outPath = filepath.Join(dir, base+LanguageExtension(b.Language))
			case filepath.IsAbs(path):
				outPath = filepath.Clean(path)
			default:
				outPath = filepath.Clean(filepath.Join(dir, path))
			}

			t, ok := targets[outPath]
			if !ok {
				t = &Target{OutputPath: outPath}
				targets[outPath] = t
				order = append(order, outPath)
			}
			t.Blocks = append(t.Blocks, b)
		}
	}

	result := make([]*Target, 0, len(order))
	for _, p := range order {
		result = append(result, targets[p])
	}
	return result
}

// RenderTarget serializes a Target to its final framed bytes (§4.5),
// resolving noweb references against idx. Expansion is bypassed for .org
// targets so literal reference tokens survive into the output.
func RenderTarget(t *Target, idx ReferenceIndex) []byte {
	ext := filepath.Ext(t.OutputPath)
	lead, trail, framingAvailable := commentStyle(ext)

	framing := framingAvailable
	for _, b := range t.Blocks {
		if commentsSuppressed(b) {
			framing = false
			break
		}
	}

	bypassExpand := strings.EqualFold(ext, ".org")

	contents := make([]string, len(t.Blocks))
	for i, b := range t.Blocks {
		contents[i] = b.Content
	}

	shebang := ""
	for _, b := range t.Blocks {
		if v := b.Args.String("shebang"); v != "" {
			shebang = v
			break
		}
	}
	if shebang == "" && len(contents) > 0 && strings.HasPrefix(contents[0], "#!") {
		if nl := strings.IndexByte(contents[0], '\n'); nl == -1 {
			shebang = contents[0]
			contents[0] = ""
		} else {
			shebang = contents[0][:nl]
			contents[0] = contents[0][nl+1:]
		}
	}

	var lines []string
	if shebang != "" {
		lines = append(lines, shebang)
	}

	if framing {
		lines = append(lines,
			frame(lead, trail, "Code generated by tangle from literate source. DO NOT EDIT."),
			frame(lead, trail, "Source: "+strings.Join(relativeSources(t), ", ")),
			"",
		)
	}

	for i, b := range t.Blocks {
		if framing {
			lines = append(lines, frame(lead, trail, fmt.Sprintf("file:%s::%d", b.SourcePath, b.StartLine+1)))
		}

		content := contents[i]
		if !bypassExpand {
			content = Expand(content, idx, "", map[string]bool{})
		}
		lines = append(lines, content)

		if framing && b.Name != "" {
			lines = append(lines, frame(lead, trail, b.Name+" ends here"))
		}
		lines = append(lines, "")
	}

	return []byte(strings.Join(lines, "\n"))
}

// relativeSources returns the unique contributing source document paths for
// a target, relative to the target's own directory, in first-seen order.
func relativeSources(t *Target) []string {
	var seen = map[string]bool{}
	var out []string
	dir := filepath.Dir(t.OutputPath)

	for _, b := range t.Blocks {
		if seen[b.SourcePath] {
			continue
		}
		seen[b.SourcePath] = true

		rel, err := filepath.Rel(dir, b.SourcePath)
		if err != nil {
			rel = b.SourcePath
		}
		out = append(out, rel)
	}
	return out
}
