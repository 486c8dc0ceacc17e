package tangle

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func scanOne(t *testing.T, path, raw string) *Document {
	t.Helper()
	doc, err := ScanDocument(path, raw)
	require.NoError(t, err)
	return doc
}

// S1: single block, explicit path.
func TestRenderTargetSingleBlockExplicitPath(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src typescript :tangle out.ts\nconst x = 1;\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	require.Len(t, targets, 1)
	require.Equal(t, "out.ts", targets[0].OutputPath)

	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)
	golden.Assert(t, string(out), "assemble/single_block.golden.ts")
}

// S2: fan-in through a noweb-ref pair feeding a .txt target (no-comment extension).
func TestRenderTargetFanIn(t *testing.T) {
	doc := scanOne(t, "doc.org", ""+
		"#+begin_src text :noweb-ref greet\nhi\n#+end_src\n"+
		"#+begin_src text :noweb-ref greet\nbye\n#+end_src\n"+
		"#+begin_src text :tangle g.txt\n<<greet>>\n#+end_src\n")

	targets := Assemble([]*Document{doc})
	require.Len(t, targets, 1)
	require.Equal(t, "g.txt", targets[0].OutputPath)
	require.Len(t, targets[0].Blocks, 1, "noweb-ref-only blocks must not appear as standalone targets")

	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)
	golden.Assert(t, string(out), "assemble/fan_in.golden.txt")
}

// S5: shebang lifted from block content.
func TestRenderTargetShebangFromContent(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src sh :tangle run\n#!/usr/bin/env sh\necho ok\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	require.Len(t, targets, 1)

	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)

	lines := splitLines(string(out))
	require.Equal(t, "#!/usr/bin/env sh", lines[0])

	echoCount := 0
	for _, l := range lines {
		if l == "echo ok" {
			echoCount++
		}
	}
	require.Equal(t, 1, echoCount, "shebang line must not be duplicated")
}

// Shebang supplied by a non-first block's explicit :shebang arg must still
// be honored and must not be duplicated.
func TestRenderTargetShebangFromLaterBlock(t *testing.T) {
	doc := scanOne(t, "doc.org", ""+
		"#+begin_src sh :tangle run\necho first\n#+end_src\n"+
		"#+begin_src sh :tangle run :shebang \"#!/usr/bin/env bash\"\necho second\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	require.Len(t, targets, 1)

	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)

	lines := splitLines(string(out))
	require.Equal(t, "#!/usr/bin/env bash", lines[0])

	count := 0
	for _, l := range lines {
		if l == "#!/usr/bin/env bash" {
			count++
		}
	}
	require.Equal(t, 1, count, "shebang must appear exactly once")
}

// S6: unresolved reference left literal in the final target.
func TestRenderTargetUnresolvedReferenceLeftLiteral(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src text :tangle out.txt\n<<missing>>\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)
	require.Contains(t, string(out), "<<missing>>")
}

func TestAssembleDerivesPathFromDocumentBasename(t *testing.T) {
	doc := scanOne(t, "notes/config.org", "#+begin_src python :tangle yes\nprint(1)\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	require.Len(t, targets, 1)
	require.Equal(t, "notes/config.py", targets[0].OutputPath)
}

func TestAssembleTangleNoIsSkipped(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src python :tangle no\nprint(1)\n#+end_src\n")
	require.Empty(t, Assemble([]*Document{doc}))
}

func TestAssembleTangleAbsentIsSkipped(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src python\nprint(1)\n#+end_src\n")
	require.Empty(t, Assemble([]*Document{doc}))
}

func TestRenderTargetCommentsNoSuppressesFraming(t *testing.T) {
	doc := scanOne(t, "doc.org", "#+begin_src typescript :tangle out.ts :comments no\nconst x = 1;\n#+end_src\n")
	targets := Assemble([]*Document{doc})
	idx := BuildIndex([]*Document{doc})
	out := RenderTarget(targets[0], idx)
	require.Equal(t, "const x = 1;\n", string(out))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
