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

package main

func source() string {
	return "secret"
}

func sink(s string) {}

func sanitize(s string) string {
	return ""
}

func id(s string) string {
	return s
}

func direct() {
	s := source() // @Source(direct)
	sink(s)       // @Sink(direct)
}

func throughCall() {
	s := id(source()) // @Source(call)
	sink(s)           // @Sink(call)
}

func sanitized() {
	s := sanitize(source())
	sink(s)
}

type box struct {
	val string
}

func field() {
	b := &box{}
	b.val = source() // @Source(field)
	sink(b.val)      // @Sink(field)
}

func produce() string {
	return source() // @Source(unbalanced)
}

func consume() {
	sink(produce()) // @Sink(unbalanced)
}

func clean() {
	s := source()
	s = "constant"
	sink(s)
}

type writer interface {
	write(s string)
}

type logWriter struct{}

func (logWriter) write(s string) {
	sink(s) // @Sink(iface)
}

func viaInterface(w writer) {
	w.write(source()) // @Source(iface)
}

func main() {
	direct()
	throughCall()
	sanitized()
	field()
	consume()
	clean()
	viaInterface(logWriter{})
}
