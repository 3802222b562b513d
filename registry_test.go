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

func TestCreateInstanceWithoutLayerLinkFails(t *testing.T) {
	resetLayer()

	var instance vk.Instance
	if r := CreateInstance(&vk.InstanceCreateInfo{}, &instance); r != vk.ErrorInitializationFailed {
		t.Fatalf("CreateInstance = %s, want ErrorInitializationFailed", r.String())
	}

	layer.mtx.Lock()
	defer layer.mtx.Unlock()
	if len(layer.instances) != 0 {
		t.Error("no state may be recorded on failed initialisation")
	}
}

func TestInstanceRegisteredByDispatchKey(t *testing.T) {
	resetLayer()
	driver := vktest.New()

	var instance vk.Instance
	if r := CreateInstance(&vk.InstanceCreateInfo{Next: driver.InstanceLink()}, &instance); r != vk.Success {
		t.Fatalf("CreateInstance: %s", r.String())
	}
	if rec := instanceByKey(vk.DispatchKey(instance)); rec == nil {
		t.Fatal("instance record not found by dispatch key")
	}

	DestroyInstance(instance)
	if rec := instanceByKey(vk.DispatchKey(instance)); rec != nil {
		t.Fatal("instance record not removed on destroy")
	}
	if driver.CallCount("vkDestroyInstance") != 1 {
		t.Error("destroy not delegated")
	}
}

func TestDeviceSetupResources(t *testing.T) {
	driver := setupDevice(t)

	rec := deviceRecordFor(t, driver)
	if rec.cmdPool == vk.NullHandle || rec.cmdBuf == 0 || rec.fence == vk.NullHandle {
		t.Fatal("device resources not created")
	}
	if !driver.FenceSignaled(rec.fence) {
		t.Error("engine fence must be created signalled")
	}

	// Pool allows individual command-buffer reset.
	for _, c := range driver.Calls {
		if c.Name == "vkCreateCommandPool" {
			if flags := c.Args[0].(vk.CommandPoolCreateFlags); flags&vk.CommandPoolCreateResetCommandBuffer == 0 {
				t.Error("command pool missing reset flag")
			}
		}
	}
}

// Queues dispatch through the same table as their device; the present
// hook must find the device record through the queue handle.
func TestQueueSharesDeviceDispatchKey(t *testing.T) {
	driver := setupDevice(t)

	if vk.DispatchKey(driver.Queue()) != vk.DispatchKey(driver.Device()) {
		t.Fatal("fake driver must model shared dispatch tables")
	}
	if deviceByKey(vk.DispatchKey(driver.Queue())) != deviceRecordFor(t, driver) {
		t.Fatal("queue key does not resolve to the device record")
	}
}

func TestDestroyDeviceReleasesEverythingThenDelegates(t *testing.T) {
	driver := setupDevice(t)
	createChain(t, driver, 1920, 1080, 3)
	driver.ResetCalls()

	DestroyDevice(driver.Device())

	if got := driver.CallCount("vkDestroyImage"); got != 2 {
		t.Errorf("mirror images destroyed = %d, want 2", got)
	}
	if got := driver.CallCount("vkFreeMemory"); got != 2 {
		t.Errorf("mirror memory freed = %d, want 2", got)
	}
	if driver.CallCount("vkDestroyFence") != 1 ||
		driver.CallCount("vkFreeCommandBuffers") != 1 ||
		driver.CallCount("vkDestroyCommandPool") != 1 {
		t.Error("device resources not released")
	}

	names := driver.CallNames()
	if names[len(names)-1] != "vkDestroyDevice" {
		t.Errorf("delegation must come last, got %v", names)
	}
	if deviceByKey(vk.DispatchKey(driver.Device())) != nil {
		t.Error("device record not removed")
	}
}
