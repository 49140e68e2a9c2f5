package bridge

import "strconv"

type SnapshotKind int

const (
	SnapshotNull SnapshotKind = iota
	SnapshotNumber
	SnapshotString
)

// Snapshot is the subset of values that may cross goroutines.
type Snapshot struct {
	Kind   SnapshotKind
	Number float64
	Text   string
}

func Null() Snapshot              { return Snapshot{Kind: SnapshotNull} }
func Number(n float64) Snapshot   { return Snapshot{Kind: SnapshotNumber, Number: n} }
func String(text string) Snapshot { return Snapshot{Kind: SnapshotString, Text: text} }

func (s Snapshot) String() string {
	switch s.Kind {
	case SnapshotNumber:
		return strconv.FormatFloat(s.Number, 'f', -1, 64)
	case SnapshotString:
		return strconv.Quote(s.Text)
	}
	return "null"
}
