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

import "context"

// Monitor is queried by the solver to know whether it should stop early.
type Monitor interface {
	Canceled() bool
}

// MonitorFunc adapts a function to the Monitor interface.
type MonitorFunc func() bool

// Canceled calls f.
func (f MonitorFunc) Canceled() bool {
	return f()
}

// NeverCancel is a Monitor that never requests cancellation.
var NeverCancel Monitor = MonitorFunc(func() bool { return false })

// ContextMonitor returns a Monitor that cancels the solve when ctx is done.
func ContextMonitor(ctx context.Context) Monitor {
	return MonitorFunc(func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	})
}
