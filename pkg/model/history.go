package model

// History is the complete, index-ordered record of journaled operations
// from a run.
type History []Op

// ByProcess returns the ops tagged with process p, in index order.
func (h History) ByProcess(p Process) History {
	var out History
	for _, o := range h {
		if o.Process == p {
			out = append(out, o)
		}
	}
	return out
}

// Invocations returns only the invoke ops, in index order.
func (h History) Invocations() History {
	var out History
	for _, o := range h {
		if o.Type == OpInvoke {
			out = append(out, o)
		}
	}
	return out
}

// Pairs matches each invoke with its completion for the same process.
// Invocations still outstanding at the end of the history are dropped.
func (h History) Pairs() []OpPair {
	open := make(map[Process]Op)
	var pairs []OpPair
	for _, o := range h {
		switch {
		case o.Type == OpInvoke:
			open[o.Process] = o
		case o.Completion():
			if inv, ok := open[o.Process]; ok {
				pairs = append(pairs, OpPair{Invoke: inv, Complete: o})
				delete(open, o.Process)
			}
		}
	}
	return pairs
}

// OpPair is an invocation and its matching completion.
type OpPair struct {
	Invoke   Op
	Complete Op
}
