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

// Package framegen is an implicit graphics layer that doubles the rate
// at which rendered frames reach the display. It intercepts surface
// presentation, keeps the last two presented images in a device-local
// staging mirror, and issues an extra present of a synthesised
// in-between image ahead of each real one. The host application does not
// cooperate and does not know the layer exists.
package framegen

import "github.com/framegen/framegen/vk"

const (
	LayerName        = "VK_LAYER_FRAMEGEN_capture"
	LayerDescription = "FrameGen: rootless frame generation layer"
)

var LayerSpecVersion = vk.MakeVersion(1, 3, 0)

const layerImplementationVersion = 1

func layerProperties() vk.LayerProperties {
	return vk.LayerProperties{
		LayerName:             LayerName,
		SpecVersion:           LayerSpecVersion,
		ImplementationVersion: layerImplementationVersion,
		Description:           LayerDescription,
	}
}

// GetInstanceProcAddr returns the layer's own entry points for the
// intercepted set and delegates everything else to the next layer.
func GetInstanceProcAddr(instance vk.Instance, name string) vk.VoidFunction {
	switch name {
	case "vkCreateInstance":
		return vk.PFNCreateInstance(CreateInstance)
	case "vkDestroyInstance":
		return vk.PFNDestroyInstance(DestroyInstance)
	case "vkCreateDevice":
		return vk.PFNCreateDevice(CreateDevice)
	case "vkDestroyDevice":
		return vk.PFNDestroyDevice(DestroyDevice)
	case "vkCreateSwapchainKHR":
		return vk.PFNCreateSwapchainKHR(CreateSwapchainKHR)
	case "vkDestroySwapchainKHR":
		return vk.PFNDestroySwapchainKHR(DestroySwapchainKHR)
	case "vkQueuePresentKHR":
		return vk.PFNQueuePresentKHR(QueuePresentKHR)
	case "vkGetInstanceProcAddr":
		return vk.PFNGetInstanceProcAddr(GetInstanceProcAddr)
	case "vkGetDeviceProcAddr":
		return vk.PFNGetDeviceProcAddr(GetDeviceProcAddr)
	case "vkEnumerateInstanceLayerProperties":
		return vk.PFNEnumerateInstanceLayerProperties(EnumerateInstanceLayerProperties)
	case "vkEnumerateDeviceLayerProperties":
		return vk.PFNEnumerateDeviceLayerProperties(EnumerateDeviceLayerProperties)
	case "vkEnumerateInstanceExtensionProperties":
		return vk.PFNEnumerateInstanceExtensionProperties(EnumerateInstanceExtensionProperties)
	case "vkEnumerateDeviceExtensionProperties":
		return vk.PFNEnumerateDeviceExtensionProperties(EnumerateDeviceExtensionProperties)
	}

	rec := instanceByKey(vk.DispatchKey(instance))
	if rec == nil {
		return nil
	}
	return rec.getInstanceProcAddr(instance, name)
}

// GetDeviceProcAddr mirrors GetInstanceProcAddr for device-level
// lookups.
func GetDeviceProcAddr(device vk.Device, name string) vk.VoidFunction {
	switch name {
	case "vkDestroyDevice":
		return vk.PFNDestroyDevice(DestroyDevice)
	case "vkCreateSwapchainKHR":
		return vk.PFNCreateSwapchainKHR(CreateSwapchainKHR)
	case "vkDestroySwapchainKHR":
		return vk.PFNDestroySwapchainKHR(DestroySwapchainKHR)
	case "vkQueuePresentKHR":
		return vk.PFNQueuePresentKHR(QueuePresentKHR)
	case "vkGetDeviceProcAddr":
		return vk.PFNGetDeviceProcAddr(GetDeviceProcAddr)
	}

	rec := deviceByKey(vk.DispatchKey(device))
	if rec == nil {
		return nil
	}
	return rec.disp.getDeviceProcAddr(device, name)
}

// EnumerateInstanceLayerProperties reports exactly one layer. The
// count-query protocol never mutates layer state, so re-querying with a
// larger buffer after Incomplete is always safe.
func EnumerateInstanceLayerProperties(propertyCount *uint32, properties []vk.LayerProperties) vk.Result {
	if properties == nil {
		*propertyCount = 1
		return vk.Success
	}
	if *propertyCount >= 1 {
		properties[0] = layerProperties()
		*propertyCount = 1
		return vk.Success
	}
	*propertyCount = 0
	return vk.Incomplete
}

func EnumerateDeviceLayerProperties(_ vk.PhysicalDevice, propertyCount *uint32, properties []vk.LayerProperties) vk.Result {
	return EnumerateInstanceLayerProperties(propertyCount, properties)
}

// EnumerateInstanceExtensionProperties: this layer exposes no
// extensions; queries for other layers are not ours to answer.
func EnumerateInstanceExtensionProperties(layerName string, propertyCount *uint32, _ []vk.ExtensionProperties) vk.Result {
	if layerName == LayerName {
		*propertyCount = 0
		return vk.Success
	}
	return vk.ErrorLayerNotPresent
}

func EnumerateDeviceExtensionProperties(_ vk.PhysicalDevice, layerName string, propertyCount *uint32, _ []vk.ExtensionProperties) vk.Result {
	if layerName == LayerName {
		*propertyCount = 0
		return vk.Success
	}
	return vk.ErrorLayerNotPresent
}
