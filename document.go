// Package tangle implements the block-extraction and noweb reference
// expansion engine at the core of the tool: parsing directive-annotated
// code blocks out of outline documents, resolving named references between
// them, and assembling the result into framed output files.
package tangle

import "errors"

// ErrNoLanguage describes a begin_src line that carries no language token.
// ParseHeader does not return it: such a line yields an empty language, and
// the resulting block can still be scanned, but it cannot be tangled unless
// inheritance later supplies a tangle key.
var ErrNoLanguage = errors.New("tangle: fence has no language token")

// ErrNoDocuments is returned by callers that discover zero input documents.
var ErrNoDocuments = errors.New("tangle: no input documents")

// Args is a directive-key to value map. Values are either string or bool,
// per the header grammar (§4.1). A key absent from a map simply does not
// contribute to the merged result.
type Args map[string]any

// String returns the string value of key, or "" if absent or not a string.
func (a Args) String(key string) string {
	if a == nil {
		return ""
	}
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns the bool value of key, and whether key was present as a bool.
func (a Args) Bool(key string) (bool, bool) {
	if a == nil {
		return false, false
	}
	v, ok := a[key].(bool)
	return v, ok
}

// Has reports whether key is present in the map at all, regardless of type.
func (a Args) Has(key string) bool {
	if a == nil {
		return false
	}
	_, ok := a[key]
	return ok
}

// MergeArgs layers override on top of base: keys present in override win,
// everything else falls through to base. Used to implement the
// document-global ← language-scoped ← block-local precedence chain.
func MergeArgs(base, override Args) Args {
	merged := make(Args, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// FileProperties is the {language_tag | "*"} -> Args mapping extracted from
// top-of-document "#+property: header-args[:LANG] …" directives.
type FileProperties map[string]Args

// Resolve computes the merged args a block of the given language inherits
// from file-level properties, before its own block-local args are applied.
func (fp FileProperties) Resolve(language string) Args {
	merged := MergeArgs(nil, fp["*"])
	if language != "" {
		merged = MergeArgs(merged, fp[language])
	}
	return merged
}

// Block is the atomic tangled unit: a delimited code region with its
// resolved directive arguments and source provenance.
type Block struct {
	// Name is the identifier supplied by a preceding "#+name:" directive, if any.
	Name string
	// Language is the fence's opening language token, original case retained.
	Language string
	// Content is the block body: CRLF-normalized, escape-stripped, with its
	// trailing newline trimmed.
	Content string
	// Args is the fully merged (global <- language <- block-local) directive map.
	Args Args

	SourcePath string
	StartLine  int
	EndLine    int
}

// NowebRef returns the block's noweb-ref key (checking the "noweb-ref" and
// "nowebRef" aliases), or "" if neither is set.
func (b *Block) NowebRef() string {
	if v := b.Args.String("noweb-ref"); v != "" {
		return v
	}
	return b.Args.String("nowebRef")
}

// Document is a single parsed source file: its file-level properties and
// the ordered sequence of blocks discovered within it.
type Document struct {
	Path       string
	Properties FileProperties
	Blocks     []*Block
}

// ReferenceIndex maps a noweb name to the ordered list of blocks that
// contribute to it, in document-list order then intra-document discovery order.
type ReferenceIndex map[string][]*Block

// Target is a single output file: its resolved path and the ordered blocks
// that contribute content to it.
type Target struct {
	OutputPath string
	Blocks     []*Block
}
