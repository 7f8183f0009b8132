package scheduler

// ID is an opaque, globally unique identifier for any entity the
// scheduler consumes or emits. It is a defined type rather than a bare
// string; every entity kind shares this one type, so the compiler does
// not distinguish a Teacher ID from a Room ID.
type ID string

// Year is one of the three academic cohorts the engine schedules.
type Year string

const (
	YearSE Year = "SE"
	YearTE Year = "TE"
	YearBE Year = "BE"
)

// Years lists the cohorts generate processes, in the order they are
// scheduled.
var Years = []Year{YearSE, YearTE, YearBE}

// BatchTag labels a batch grid ("B1".."Bk").
type BatchTag string
