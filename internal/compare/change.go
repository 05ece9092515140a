package compare

// ChangeKind distinguishes added from removed content. The values are the
// wire strings of the report format.
type ChangeKind string

const (
	// ChangeAdd marks content present only in the right document.
	ChangeAdd ChangeKind = "add"
	// ChangeRemove marks content present only in the left document.
	ChangeRemove ChangeKind = "remove"
)

// Change is one textual difference found on a page. Text holds the joined
// line blob covered by the underlying edit-script step.
type Change struct {
	Page int        `json:"page"` // 1-based
	Kind ChangeKind `json:"type"`
	Text string     `json:"text"`
}
