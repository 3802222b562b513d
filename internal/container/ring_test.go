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

package container

import (
	"slices"
	"testing"
)

func collect(r *Ring[int]) []int {
	var out []int
	r.Do(func(v int) { out = append(out, v) })
	return out
}

func TestRingFillsThenOverwrites(t *testing.T) {
	r := NewRing[int](3)
	if !r.Empty() || r.Len() != 0 {
		t.Fatal("new ring must be empty")
	}

	r.Push(1)
	r.Push(2)
	if r.Len() != 2 || !slices.Equal(collect(r), []int{1, 2}) {
		t.Fatalf("partial ring = %v", collect(r))
	}

	r.Push(3)
	r.Push(4) // overwrites 1
	if r.Len() != 3 || !slices.Equal(collect(r), []int{2, 3, 4}) {
		t.Fatalf("wrapped ring = %v", collect(r))
	}

	r.Push(5)
	r.Push(6)
	r.Push(7)
	if !slices.Equal(collect(r), []int{5, 6, 7}) {
		t.Fatalf("fully cycled ring = %v", collect(r))
	}
}

func TestRingReset(t *testing.T) {
	r := NewRing[int](2)
	r.Push(1)
	r.Push(2)
	r.Reset()
	if !r.Empty() || r.Len() != 0 || len(collect(r)) != 0 {
		t.Fatal("reset ring must be empty")
	}
}
