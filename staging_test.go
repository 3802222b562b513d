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

import (
	"testing"

	"github.com/framegen/framegen/vk"
)

func TestMirrorPicksDeviceLocalMemory(t *testing.T) {
	driver := setupDevice(t)
	createChain(t, driver, 1920, 1080, 3)

	// The driver exposes host-visible at index 0 and device-local at
	// index 1; the linear scan must land on 1 for both images.
	allocs := 0
	for _, c := range driver.Calls {
		if c.Name == "vkAllocateMemory" {
			allocs++
			if idx := c.Args[0].(uint32); idx != 1 {
				t.Errorf("memory type index = %d, want 1 (device local)", idx)
			}
		}
	}
	if allocs != 2 {
		t.Errorf("allocations = %d, want 2", allocs)
	}
}

func TestMirrorResizeWaitsForDeviceIdle(t *testing.T) {
	driver := setupDevice(t)
	chain := createChain(t, driver, 1920, 1080, 3)
	rec := deviceRecordFor(t, driver)

	firstPrev := rec.mirror.prev.image
	firstCur := rec.mirror.cur.image

	DestroySwapchainKHR(driver.Device(), chain)
	driver.ResetCalls()
	createChain(t, driver, 2560, 1440, 3)

	names := driver.CallNames()
	sawIdle := false
	for _, n := range names {
		switch n {
		case "vkDeviceWaitIdle":
			sawIdle = true
		case "vkDestroyImage":
			if !sawIdle {
				t.Fatal("staging images destroyed before device idle")
			}
		}
	}
	if !sawIdle {
		t.Fatal("resize must wait for device idleness")
	}

	if rec.mirror.prev.image == firstPrev || rec.mirror.cur.image == firstCur {
		t.Error("resize must allocate fresh images")
	}
	if rec.mirror.hasPrev {
		t.Error("hasPrev must reset on resize")
	}
}

func TestMirrorEnsureIsIdempotent(t *testing.T) {
	driver := setupDevice(t)
	createChain(t, driver, 1920, 1080, 3)
	rec := deviceRecordFor(t, driver)

	prev := rec.mirror.prev.image
	driver.ResetCalls()
	if !rec.mirror.ensure(rec, 1920, 1080, vk.FormatB8G8R8A8Unorm) {
		t.Fatal("ensure on matching mirror must succeed")
	}
	if len(driver.Calls) != 0 {
		t.Errorf("matching ensure must be a no-op, got %v", driver.CallNames())
	}
	if rec.mirror.prev.image != prev {
		t.Error("matching ensure must not reallocate")
	}
}

func TestMirrorAllocationFailureTearsDown(t *testing.T) {
	driver := setupDevice(t)
	driver.AllocateMemoryResult = vk.ErrorOutOfDeviceMemory
	createChain(t, driver, 1920, 1080, 3)

	rec := deviceRecordFor(t, driver)
	if rec.mirror.valid() {
		t.Fatal("mirror must not be half-configured")
	}
	if rec.mirror.prev.image != vk.NullHandle || rec.mirror.cur.image != vk.NullHandle {
		t.Error("partial allocations must be released")
	}
}

func TestMirrorSwap(t *testing.T) {
	driver := setupDevice(t)
	createChain(t, driver, 1920, 1080, 3)
	rec := deviceRecordFor(t, driver)

	prev, cur := rec.mirror.prev.image, rec.mirror.cur.image
	rec.mirror.swap()
	if rec.mirror.prev.image != cur || rec.mirror.cur.image != prev {
		t.Error("swap must exchange the staging slots")
	}
	if !rec.mirror.hasPrev {
		t.Error("swap must set hasPrev")
	}
}
