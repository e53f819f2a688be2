package enum

// ReturnStatus is the state of a return. Returns are created in their
// terminal state; the enum exists so the column carries a name, not a flag.
type ReturnStatus string

const (
	ReturnStatusCompleted ReturnStatus = "COMPLETED"
)
