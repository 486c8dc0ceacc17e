package tangle

// BuildIndex builds the global name -> []*Block reference index from a set
// of documents, in document-list order then intra-document discovery order
// (§4.3, §5). A block contributes under its Name and, if different, under
// its noweb-ref alias; contributing under both is only a duplicate append
// when the two keys are distinct.
func BuildIndex(docs []*Document) ReferenceIndex {
	idx := ReferenceIndex{}

	for _, doc := range docs {
		for _, b := range doc.Blocks {
			if b.Name != "" {
				idx[b.Name] = append(idx[b.Name], b)
			}
			if ref := b.NowebRef(); ref != "" && ref != b.Name {
				idx[ref] = append(idx[ref], b)
			}
		}
	}

	return idx
}
