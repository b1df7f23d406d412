// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ifds

import "fmt"

// ContractViolation is the error returned when a problem does not satisfy the contract of the solver. It
// indicates a bug in the problem definition, not a condition the caller can recover from by retrying.
type ContractViolation struct {
	// Op is the operation of the solver during which the violation was detected
	Op string
	// Reason describes the violation
	Reason string
}

func (c *ContractViolation) Error() string {
	return fmt.Sprintf("ifds contract violation in %s: %s", c.Op, c.Reason)
}

func violation(op string, format string, args ...any) *ContractViolation {
	return &ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// recoverViolation turns a panic carrying a *ContractViolation into the error stored in err and poisons the
// solver. Other panics are propagated. It must be deferred directly so that recover stops the panic.
func (s *Solver[N, P]) recoverViolation(err *error) {
	r := recover()
	if r == nil {
		return
	}
	cv, ok := r.(*ContractViolation)
	if !ok {
		panic(r)
	}
	*err = cv
	s.err = cv
}
