// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package err

// ModelingError indicates malformed construction: a type mismatch between
// operands, a nil or out-of-range literal, an illegal map/sequence nesting
// or use of an absent solver model.
type ModelingError struct {
	Problem string
	Child_  Error
}

func (e ModelingError) Kind() string {
	return "modelingError"
}
func (e ModelingError) Error() string {
	return e.String()
}
func (e ModelingError) String() string {
	out := "Modeling Error\n"
	out += "==============\n"
	out += "Problem\n"
	out += "-------\n"
	out += e.Problem + "\n\n"
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e ModelingError) Child() Error {
	return e.Child_
}

// CapabilityError indicates a well-typed expression that uses an operation
// the selected backend cannot encode. It is raised at translation time and
// never downgraded to an approximation.
type CapabilityError struct {
	Backend string
	Problem string
	Child_  Error
}

func (e CapabilityError) Kind() string {
	return "capabilityError"
}
func (e CapabilityError) Error() string {
	return e.String()
}
func (e CapabilityError) String() string {
	out := "Capability Error\n"
	out += "================\n"
	out += "Backend\n"
	out += "-------\n"
	out += e.Backend + "\n\n"
	out += "Problem\n"
	out += "-------\n"
	out += e.Problem + "\n\n"
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e CapabilityError) Child() Error {
	return e.Child_
}

type ExecutionError struct {
	Problem string
	Child_  Error
}

func (e ExecutionError) Kind() string {
	return "executionError"
}
func (e ExecutionError) Error() string {
	return e.String()
}
func (e ExecutionError) String() string {
	out := "Execution Error\n"
	out += "===============\n"
	out += "Problem\n"
	out += "-------\n"
	out += e.Problem + "\n\n"
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e ExecutionError) Child() Error {
	return e.Child_
}

// EngineError passes an underlying solver engine failure through unchanged.
// It is distinct from unsatisfiability, which is not an error.
type EngineError struct {
	Backend string
	Problem string
	Child_  Error
}

func (e EngineError) Kind() string {
	return "engineError"
}
func (e EngineError) Error() string {
	return e.String()
}
func (e EngineError) String() string {
	out := "Engine Error\n"
	out += "============\n"
	out += "Backend\n"
	out += "-------\n"
	out += e.Backend + "\n\n"
	out += "Problem\n"
	out += "-------\n"
	out += e.Problem + "\n\n"
	if e.Child_ != nil {
		out += e.Child_.String()
	}
	return out
}
func (e EngineError) Child() Error {
	return e.Child_
}
