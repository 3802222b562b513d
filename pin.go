/*
Copyright 2025 The FrameGen Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package framegen

import "goarrg.com/debug"

// recordPin ties a registry record to the address it was registered
// under. Records own driver handles and a fence that serialises their
// use; a by-value copy would carry those handles out from under the
// fence, so any access through a copy or after release is fatal.
type recordPin struct {
	self *recordPin
}

// pin fixes the record at its current address. Called once, when
// CreateDevice builds the record, before it is inserted into the registry.
func (p *recordPin) pin() {
	if p.self != nil {
		abort("record pinned twice")
	}
	p.self = p
}

// verify aborts when the record was copied by value or used after
// release.
func (p *recordPin) verify() {
	if p.self != p {
		abort("registry record copied by value or used after release: \n%s", debug.StackTrace(0))
	}
}

// release marks the record dead once its handles are back with the
// driver.
func (p *recordPin) release() {
	p.self = nil
}

func (*recordPin) Lock()   {}
func (*recordPin) Unlock() {}
