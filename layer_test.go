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

func TestEnumerateLayerProperties(t *testing.T) {
	var count uint32
	if r := EnumerateInstanceLayerProperties(&count, nil); r != vk.Success || count != 1 {
		t.Fatalf("count query = %s/%d, want Success/1", r.String(), count)
	}

	props := make([]vk.LayerProperties, count)
	if r := EnumerateInstanceLayerProperties(&count, props); r != vk.Success {
		t.Fatalf("enumerate = %s", r.String())
	}
	if props[0].LayerName != LayerName {
		t.Errorf("LayerName = %q", props[0].LayerName)
	}
	if props[0].SpecVersion != vk.MakeVersion(1, 3, 0) {
		t.Errorf("SpecVersion = %#x", props[0].SpecVersion)
	}
	if props[0].ImplementationVersion != 1 || props[0].Description == "" {
		t.Error("identity fields incomplete")
	}
}

// A too-small buffer reports Incomplete and mutates nothing; the query
// can be repeated indefinitely.
func TestEnumerateIncompleteIsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		count := uint32(0)
		if r := EnumerateInstanceLayerProperties(&count, []vk.LayerProperties{}); r != vk.Incomplete {
			t.Fatalf("short buffer = %s, want Incomplete", r.String())
		}
	}

	count := uint32(0)
	if r := EnumerateInstanceLayerProperties(&count, nil); r != vk.Success || count != 1 {
		t.Fatal("enumeration state mutated by Incomplete queries")
	}
}

func TestEnumerateDeviceLayerPropertiesMatchesInstance(t *testing.T) {
	var count uint32
	if r := EnumerateDeviceLayerProperties(0, &count, nil); r != vk.Success || count != 1 {
		t.Fatalf("device layer enumeration = %s/%d", r.String(), count)
	}
}

func TestEnumerateExtensionProperties(t *testing.T) {
	var count uint32
	if r := EnumerateInstanceExtensionProperties(LayerName, &count, nil); r != vk.Success || count != 0 {
		t.Fatalf("own name = %s/%d, want Success/0", r.String(), count)
	}
	if r := EnumerateInstanceExtensionProperties("VK_LAYER_other", &count, nil); r != vk.ErrorLayerNotPresent {
		t.Fatalf("other name = %s, want ErrorLayerNotPresent", r.String())
	}
	if r := EnumerateDeviceExtensionProperties(0, LayerName, &count, nil); r != vk.Success || count != 0 {
		t.Fatalf("device, own name = %s/%d, want Success/0", r.String(), count)
	}
}

func TestProcAddrReturnsOwnEntryPoints(t *testing.T) {
	driver := setupDevice(t)

	intercepted := []string{
		"vkCreateInstance", "vkDestroyInstance", "vkCreateDevice", "vkDestroyDevice",
		"vkCreateSwapchainKHR", "vkDestroySwapchainKHR", "vkQueuePresentKHR",
		"vkGetInstanceProcAddr", "vkGetDeviceProcAddr",
		"vkEnumerateInstanceLayerProperties", "vkEnumerateDeviceLayerProperties",
		"vkEnumerateInstanceExtensionProperties", "vkEnumerateDeviceExtensionProperties",
	}
	for _, name := range intercepted {
		if GetInstanceProcAddr(driver.Instance(), name) == nil {
			t.Errorf("GetInstanceProcAddr(%q) = nil", name)
		}
	}

	// Specific assertion that present routes to the engine.
	if _, ok := GetInstanceProcAddr(driver.Instance(), "vkQueuePresentKHR").(vk.PFNQueuePresentKHR); !ok {
		t.Error("vkQueuePresentKHR must resolve to the layer's hook")
	}

	for _, name := range []string{"vkDestroyDevice", "vkCreateSwapchainKHR", "vkDestroySwapchainKHR", "vkQueuePresentKHR", "vkGetDeviceProcAddr"} {
		if GetDeviceProcAddr(driver.Device(), name) == nil {
			t.Errorf("GetDeviceProcAddr(%q) = nil", name)
		}
	}
}

func TestProcAddrDelegatesUnknownNames(t *testing.T) {
	driver := setupDevice(t)

	// Not intercepted: must come from the next layer.
	if GetInstanceProcAddr(driver.Instance(), "vkGetPhysicalDeviceMemoryProperties") == nil {
		t.Error("delegation to next layer failed")
	}
	if GetDeviceProcAddr(driver.Device(), "vkQueueSubmit") == nil {
		t.Error("device delegation to next layer failed")
	}
	if GetDeviceProcAddr(driver.Device(), "vkNotARealFunction") != nil {
		t.Error("unknown names must resolve to nil")
	}
}
