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

package funcutil

import (
	"fmt"
)

// An Optional holds a value or none. The zero Optional is none.
type Optional[T any] struct {
	value T
	some  bool
}

// Some returns an optional holding x.
func Some[T any](x T) Optional[T] {
	return Optional[T]{value: x, some: true}
}

// None returns an optional holding no value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Value returns the value or panics if it is none
func (o Optional[T]) Value() T {
	if !o.some {
		panic("value of a none optional")
	}
	return o.value
}

// IsSome returns true if the optional holds a value
func (o Optional[T]) IsSome() bool { return o.some }

// IsNone returns true if the optional holds no value
func (o Optional[T]) IsNone() bool { return !o.some }

func (o Optional[T]) String() string {
	if !o.some {
		return "none"
	}
	return fmt.Sprintf("%v", o.value)
}

// BindOption returns f applied to the value of x, or none if x is none
func BindOption[T any, S any](x Optional[T], f func(T) Optional[S]) Optional[S] {
	if x.some {
		return f(x.value)
	}
	return None[S]()
}
