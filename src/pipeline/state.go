package pipeline

type State int

const (
	Pending State = iota
	Validating
	Segmenting
	Synthesizing
	Assembling
	PostProcessing
	Done
	SkippedExisting
	Failed
)

var stateNames = [...]string{
	Pending:         "pending",
	Validating:      "validating",
	Segmenting:      "segmenting",
	Synthesizing:    "synthesizing",
	Assembling:      "assembling",
	PostProcessing:  "postprocessing",
	Done:            "done",
	SkippedExisting: "skipped",
	Failed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Done || s == SkippedExisting || s == Failed
}

// Result is the outcome of one chapter.
type Result struct {
	Chapter string
	State   State
	// Stage is the last state entered before a failure.
	Stage   State
	Output  string
	Chunks  int
	Dropped int
	Cached  int
	Err     error
}
