package core

import "strconv"

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeString denotes free-form text such as seeds.
	ParamTypeString ParamType = "string"
)

// Parameter describes a single value shown on the HUD or in logs.
type Parameter struct {
	Key   string
	Label string
	Type  ParamType
	Value string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the current set of parameters of a session.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterControl describes a keyboard-adjustable float parameter.
type ParameterControl struct {
	Key   string
	Label string
	Step  float64
	Min   float64
	Max   float64
}

// Nudge moves value by dir steps and clamps the result into [Min, Max].
func (c ParameterControl) Nudge(value float64, dir int) float64 {
	v := value + float64(dir)*c.Step
	if v < c.Min {
		v = c.Min
	}
	if v > c.Max {
		v = c.Max
	}
	return v
}

// IntParam formats an integer parameter.
func IntParam(key, label string, value int) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.Itoa(value)}
}

// FloatParam formats a float parameter with the shortest exact representation.
func FloatParam(key, label string, value float64) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeFloat, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

// StringParam formats a text parameter.
func StringParam(key, label, value string) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeString, Value: value}
}
