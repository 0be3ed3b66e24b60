// Package corpus gives read-only access to the ~68178-entry word
// table the offline dictionary build pipeline produces. The runtime
// never writes to this table; it only reads ids, neighbors, levels,
// frequencies and translations out of it.
package corpus

// LevelRange is a half-open [Start, End) id range for one frequency
// level. Ids are dense, contiguous, and frequency-sorted, so a level
// is exactly the ids in its range.
type LevelRange struct {
	Start uint32
	End   uint32
}

// Len returns the number of ids in the range.
func (r LevelRange) Len() uint32 {
	return r.End - r.Start
}

// NumLevels is the fixed number of frequency bands the corpus is
// partitioned into.
const NumLevels = 8

// LVRanges gives the exact id range of each level, frequency-sorted
// (level 0 is the most frequent band).
var LVRanges = [NumLevels]LevelRange{
	{0, 1023},
	{1023, 2925},
	{2925, 6520},
	{6520, 13082},
	{13082, 23333},
	{23333, 36945},
	{36945, 49245},
	{49245, 68178},
}

// LVCounts is the size of each level; LVCounts[k] == LVRanges[k].Len().
var LVCounts = [NumLevels]uint32{1023, 1902, 3595, 6562, 10251, 13612, 12300, 18933}

// TotalWords is the size of the full corpus and the theoretical upper
// bound every estimator must respect (§8, properties 5/6).
const TotalWords = 1023 + 1902 + 3595 + 6562 + 10251 + 13612 + 12300 + 18933

// Entry is one parsed corpus row, with its comma-joined neighbor
// columns already split into id slices.
type Entry struct {
	ID           uint32
	Word         string
	Freq         uint32
	Translations []string // split from the ";;;"-joined "des" column
	Level        uint8
	Sim          []uint32
	Incl         []uint32
	InclRev      []uint32
}

// Neighbors is the union of Sim, Incl and InclRev, the pool the
// question generator draws distractors from (§4.2).
func (e Entry) Neighbors() []uint32 {
	out := make([]uint32, 0, len(e.Sim)+len(e.Incl)+len(e.InclRev))
	out = append(out, e.Sim...)
	out = append(out, e.Incl...)
	out = append(out, e.InclRev...)
	return out
}

// Evidence is a single answered question, reduced to exactly what the
// estimators need (§3).
type Evidence struct {
	ID      uint32
	Freq    uint32
	Level   uint8
	Correct bool
}
