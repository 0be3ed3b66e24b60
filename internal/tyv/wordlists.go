// Package tyv implements the recall-tyv modality's curated word lists
// and its neural mimic of Test-Your-Vocab scoring (§4.1/§4.3).
//
// The broad/narrow lists stand in for the offline-curated assets that
// §1 treats as an external collaborator's output, the same way
// cmd/seedcorpus stands in for the corpus build pipeline.
package tyv

import (
	_ "embed"
	"strings"
)

//go:embed broad.txt
var broadRaw string

//go:embed narrow.txt
var narrowRaw string

// Lists is the immutable pair of curated word lists used by the
// recall-tyv modality: Broad indexes positions [0, len(Broad)), Narrow
// indexes [len(Broad), len(Broad)+len(Narrow)) (§4.3).
type Lists struct {
	Broad  []string
	Narrow []string
}

// Load parses the embedded word lists. It never fails at runtime
// since the lists are compiled into the binary.
func Load() Lists {
	return Lists{
		Broad:  splitLines(broadRaw),
		Narrow: splitLines(narrowRaw),
	}
}

func splitLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// WordAt resolves a recall-tyv session's position-encoded current word
// (§4.3) back to its surface text.
func (l Lists) WordAt(pos uint32) string {
	if int(pos) < len(l.Broad) {
		return l.Broad[pos]
	}
	i := int(pos) - len(l.Broad)
	if i < len(l.Narrow) {
		return l.Narrow[i]
	}
	return ""
}
