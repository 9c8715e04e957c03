// Package cta places the questionnaire call-to-action inside a post body.
package cta

import (
	"github.com/dgallion1/caseblog/internal/portabletext"
)

// paragraphsBeforeCTA is how many plain paragraphs precede the inline CTA.
const paragraphsBeforeCTA = 2

// SplitIndex returns the index at which the inline CTA is inserted: just
// after the second plain paragraph. With fewer than two paragraphs it falls
// back to 1, or to len(doc) when the document has at most one block.
//
// The fallback can land between a heading and its first paragraph.
func SplitIndex(doc portabletext.Document) int {
	if len(doc) <= 1 {
		return len(doc)
	}
	seen := 0
	for i, b := range doc {
		if !b.IsParagraph() {
			continue
		}
		seen++
		if seen == paragraphsBeforeCTA {
			return i + 1
		}
	}
	return 1
}

// Split partitions doc at SplitIndex. Both halves are fresh slices; appending
// to one never touches doc or the other half.
func Split(doc portabletext.Document) (before, after portabletext.Document) {
	idx := SplitIndex(doc)
	before = make(portabletext.Document, idx)
	copy(before, doc[:idx])
	after = make(portabletext.Document, len(doc)-idx)
	copy(after, doc[idx:])
	return before, after
}
