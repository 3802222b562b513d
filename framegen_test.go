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

	"github.com/framegen/framegen/internal/vktest"
	"github.com/framegen/framegen/vk"
)

// resetLayer returns the package singleton to a known state. Tests run
// against the same global registry the loader entry points use.
func resetLayer() {
	layer.mtx.Lock()
	layer.instances = map[uintptr]*instanceRecord{}
	layer.devices = map[uintptr]*deviceRecord{}
	layer.config = DefaultConfig()
	layer.mtx.Unlock()

	layer.controller.readTemp = func() float32 { return 0 }
	layer.controller.Configure(layer.config)

	layer.totalFrames.Store(0)
	layer.totalDoubled.Store(0)
	layer.stats.framesGenerated.Store(0)
	layer.stats.framesDropped.Store(0)
}

// setupDevice walks a driver through instance and device creation.
func setupDevice(t *testing.T) *vktest.Driver {
	t.Helper()
	resetLayer()

	driver := vktest.New()

	var instance vk.Instance
	ici := &vk.InstanceCreateInfo{Next: driver.InstanceLink()}
	if r := CreateInstance(ici, &instance); r != vk.Success {
		t.Fatalf("CreateInstance: %s", r.String())
	}

	var device vk.Device
	dci := &vk.DeviceCreateInfo{
		Next:             driver.DeviceLink(),
		QueueCreateInfos: []vk.DeviceQueueCreateInfo{{QueueFamilyIndex: 0, QueuePriorities: []float32{1}}},
	}
	if r := CreateDevice(driver.NewPhysicalDevice(), dci, &device); r != vk.Success {
		t.Fatalf("CreateDevice: %s", r.String())
	}

	return driver
}

func createChain(t *testing.T, driver *vktest.Driver, width, height, minImages uint32) vk.SwapchainKHR {
	t.Helper()

	var swapchain vk.SwapchainKHR
	info := &vk.SwapchainCreateInfoKHR{
		MinImageCount:    minImages,
		ImageFormat:      vk.FormatB8G8R8A8Unorm,
		ImageExtent:      vk.Extent2D{Width: width, Height: height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageColorAttachment,
		PresentMode:      vk.PresentModeFIFO,
	}
	if r := CreateSwapchainKHR(driver.Device(), info, &swapchain); r != vk.Success {
		t.Fatalf("CreateSwapchainKHR: %s", r.String())
	}
	return swapchain
}

func present(t *testing.T, driver *vktest.Driver, chain vk.SwapchainKHR, index uint32) vk.Result {
	t.Helper()
	return QueuePresentKHR(driver.Queue(), &vk.PresentInfoKHR{
		Swapchains:   []vk.SwapchainKHR{chain},
		ImageIndices: []uint32{index},
	})
}

func deviceRecordFor(t *testing.T, driver *vktest.Driver) *deviceRecord {
	t.Helper()
	rec := deviceByKey(vk.DispatchKey(driver.Device()))
	if rec == nil {
		t.Fatal("no device record")
	}
	return rec
}

func wantCalls(t *testing.T, driver *vktest.Driver, want ...string) {
	t.Helper()
	got := driver.CallNames()
	if len(got) != len(want) {
		t.Fatalf("call sequence mismatch:\n got %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call sequence mismatch at %d:\n got %v\nwant %v", i, got, want)
		}
	}
}
