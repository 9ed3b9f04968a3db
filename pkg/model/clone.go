package model

import "github.com/mohae/deepcopy"

// Clone returns a deep copy of the field sharing no references with the
// original.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	out := deepcopy.Copy(*f).(Field)
	return &out
}

// Clone returns a deep copy of the form. Snapshots handed to presentation code
// come from here so callers can never mutate store state in place.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	out := deepcopy.Copy(*f).(Form)
	return &out
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := deepcopy.Copy(*t).(Template)
	return &out
}

// Clone returns a deep copy of the shape.
func (s FormShape) Clone() FormShape {
	return deepcopy.Copy(s).(FormShape)
}

// CloneFields deep-copies a field list, preserving nil for nil input.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i := range fields {
		out[i] = *fields[i].Clone()
	}
	return out
}

// CloneSteps deep-copies a step list, preserving nil for nil input.
func CloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	return deepcopy.Copy(steps).([]Step)
}
