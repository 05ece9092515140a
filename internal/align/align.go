// Package align computes edit scripts between two ordered token sequences.
//
// The algorithm recursively picks the longest contiguous block of tokens
// common to both sequences, emits it as an Equal opcode and recurses on the
// windows before and after it. This is the Ratcliff/Obershelp family of
// "good enough" alignments: results are guaranteed to cover both sequences
// completely and to be deterministic, but are not minimum-edit-distance
// optimal. Callers must not rely on optimality.
package align

// OpTag identifies one kind of edit-script step.
type OpTag uint8

const (
	// OpEqual marks a block present in both sequences.
	OpEqual OpTag = iota
	// OpReplace marks a left block substituted by a right block.
	OpReplace
	// OpDelete marks a left block absent from the right sequence.
	OpDelete
	// OpInsert marks a right block absent from the left sequence.
	OpInsert
)

// String returns the lower-case tag name.
func (t OpTag) String() string {
	switch t {
	case OpEqual:
		return "equal"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// Opcode is one step of an edit script. It covers left[I1:I2) and
// right[J1:J2); for OpDelete J1 == J2, for OpInsert I1 == I2.
type Opcode struct {
	Tag OpTag
	I1  int
	I2  int
	J1  int
	J2  int
}

// Diff aligns two token sequences and returns an ordered edit script.
//
// The returned opcodes partition [0,len(left)) and [0,len(right)) with no
// gaps or overlaps. Ties between equally long matching blocks are broken by
// the earliest start in left, then the earliest start in right, so repeated
// runs over the same inputs yield identical scripts. Diff is total: empty
// inputs produce an all-insert, all-delete or empty script.
func Diff[T comparable](left, right []T) []Opcode {
	// Index right-side token positions once; the recursion reuses it.
	positions := make(map[T][]int, len(right))
	for j, tok := range right {
		positions[tok] = append(positions[tok], j)
	}

	var ops []Opcode
	diffWindow(left, right, 0, len(left), 0, len(right), positions, &ops)
	return ops
}

// diffWindow aligns left[alo:ahi) against right[blo:bhi).
func diffWindow[T comparable](left, right []T, alo, ahi, blo, bhi int, positions map[T][]int, ops *[]Opcode) {
	i, j, size := longestMatch(left, alo, ahi, blo, bhi, positions)
	if size == 0 {
		switch {
		case ahi > alo && bhi > blo:
			*ops = append(*ops, Opcode{Tag: OpReplace, I1: alo, I2: ahi, J1: blo, J2: bhi})
		case ahi > alo:
			*ops = append(*ops, Opcode{Tag: OpDelete, I1: alo, I2: ahi, J1: blo, J2: blo})
		case bhi > blo:
			*ops = append(*ops, Opcode{Tag: OpInsert, I1: alo, I2: alo, J1: blo, J2: bhi})
		}
		return
	}

	diffWindow(left, right, alo, i, blo, j, positions, ops)
	*ops = append(*ops, Opcode{Tag: OpEqual, I1: i, I2: i + size, J1: j, J2: j + size})
	diffWindow(left, right, i+size, ahi, j+size, bhi, positions, ops)
}

// longestMatch finds the longest block with left[i:i+size] == right[j:j+size]
// inside the given window. Among equally long blocks the one starting
// earliest in left wins, then the one starting earliest in right.
func longestMatch[T comparable](left []T, alo, ahi, blo, bhi int, positions map[T][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// lengths[j] is the length of the longest match ending at left[i] and
	// right[j]; rebuilt row by row as i advances.
	lengths := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range positions[left[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return besti, bestj, bestsize
}
