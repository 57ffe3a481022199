package scaledbuf

// Output describes one display output an element's placement can overlap.
// The placement layer feeds overlap changes in through EnterOutput and
// LeaveOutput; this package only consumes them.
type Output struct {
	// Name uniquely identifies the output (e.g. a connector name).
	Name string

	// Scale is the output's scale factor, > 0.
	Scale float64
}

// EnterOutput records that the element's placement now overlaps the given
// output. The active scale is recomputed synchronously as the maximum
// scale over all overlapped outputs, and SetScale runs if the maximum
// changed.
func (e *Element) EnterOutput(o Output) {
	e.checkAlive()
	if o.Scale <= 0 {
		Logger().Warn("scaledbuf: ignoring output with invalid scale",
			"output", o.Name, "scale", o.Scale)
		return
	}
	if e.outputs == nil {
		e.outputs = make(map[string]float64)
	}
	e.outputs[o.Name] = o.Scale
	e.recomputeScale()
}

// LeaveOutput records that the element's placement no longer overlaps the
// named output. Unknown names are ignored.
func (e *Element) LeaveOutput(name string) {
	e.checkAlive()
	delete(e.outputs, name)
	e.recomputeScale()
}

// recomputeScale derives the active scale from the overlapped outputs.
// With no overlapped outputs the last active scale is kept: an element
// mid-move between monitors should not lose its buffer.
func (e *Element) recomputeScale() {
	maxScale := 0.0
	for _, s := range e.outputs {
		if s > maxScale {
			maxScale = s
		}
	}
	if maxScale == 0 || maxScale == e.scale {
		return
	}
	e.SetScale(maxScale)
}
