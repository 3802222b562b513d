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
	"goarrg.com/debug"

	"github.com/framegen/framegen/vk"
)

// deviceDispatch holds the next-layer entry points for every device
// operation the layer invokes. A record is only installed when every
// slot resolved, so lookups never hit a nil function mid-present.
type deviceDispatch struct {
	getDeviceProcAddr vk.PFNGetDeviceProcAddr

	destroyDevice  vk.PFNDestroyDevice
	getDeviceQueue vk.PFNGetDeviceQueue
	deviceWaitIdle vk.PFNDeviceWaitIdle

	createSwapchain    vk.PFNCreateSwapchainKHR
	destroySwapchain   vk.PFNDestroySwapchainKHR
	getSwapchainImages vk.PFNGetSwapchainImagesKHR
	acquireNextImage   vk.PFNAcquireNextImageKHR
	queuePresent       vk.PFNQueuePresentKHR

	queueSubmit   vk.PFNQueueSubmit
	queueWaitIdle vk.PFNQueueWaitIdle

	createCommandPool      vk.PFNCreateCommandPool
	destroyCommandPool     vk.PFNDestroyCommandPool
	allocateCommandBuffers vk.PFNAllocateCommandBuffers
	freeCommandBuffers     vk.PFNFreeCommandBuffers
	resetCommandBuffer     vk.PFNResetCommandBuffer
	beginCommandBuffer     vk.PFNBeginCommandBuffer
	endCommandBuffer       vk.PFNEndCommandBuffer

	cmdPipelineBarrier vk.PFNCmdPipelineBarrier
	cmdCopyImage       vk.PFNCmdCopyImage
	cmdBlitImage       vk.PFNCmdBlitImage

	createImage                vk.PFNCreateImage
	destroyImage               vk.PFNDestroyImage
	getImageMemoryRequirements vk.PFNGetImageMemoryRequirements
	allocateMemory             vk.PFNAllocateMemory
	freeMemory                 vk.PFNFreeMemory
	bindImageMemory            vk.PFNBindImageMemory

	createFence      vk.PFNCreateFence
	destroyFence     vk.PFNDestroyFence
	waitForFences    vk.PFNWaitForFences
	resetFences      vk.PFNResetFences
	createSemaphore  vk.PFNCreateSemaphore
	destroySemaphore vk.PFNDestroySemaphore
}

func loadProc[T any](gdpa vk.PFNGetDeviceProcAddr, device vk.Device, name string, missing *[]string) T {
	var fn T
	f := gdpa(device, name)
	if f == nil {
		*missing = append(*missing, name)
		return fn
	}
	fn, ok := f.(T)
	if !ok {
		*missing = append(*missing, name)
	}
	return fn
}

func (d *deviceDispatch) resolve(gdpa vk.PFNGetDeviceProcAddr, device vk.Device) error {
	var missing []string

	d.getDeviceProcAddr = gdpa

	d.destroyDevice = loadProc[vk.PFNDestroyDevice](gdpa, device, "vkDestroyDevice", &missing)
	d.getDeviceQueue = loadProc[vk.PFNGetDeviceQueue](gdpa, device, "vkGetDeviceQueue", &missing)
	d.deviceWaitIdle = loadProc[vk.PFNDeviceWaitIdle](gdpa, device, "vkDeviceWaitIdle", &missing)

	d.createSwapchain = loadProc[vk.PFNCreateSwapchainKHR](gdpa, device, "vkCreateSwapchainKHR", &missing)
	d.destroySwapchain = loadProc[vk.PFNDestroySwapchainKHR](gdpa, device, "vkDestroySwapchainKHR", &missing)
	d.getSwapchainImages = loadProc[vk.PFNGetSwapchainImagesKHR](gdpa, device, "vkGetSwapchainImagesKHR", &missing)
	d.acquireNextImage = loadProc[vk.PFNAcquireNextImageKHR](gdpa, device, "vkAcquireNextImageKHR", &missing)
	d.queuePresent = loadProc[vk.PFNQueuePresentKHR](gdpa, device, "vkQueuePresentKHR", &missing)

	d.queueSubmit = loadProc[vk.PFNQueueSubmit](gdpa, device, "vkQueueSubmit", &missing)
	d.queueWaitIdle = loadProc[vk.PFNQueueWaitIdle](gdpa, device, "vkQueueWaitIdle", &missing)

	d.createCommandPool = loadProc[vk.PFNCreateCommandPool](gdpa, device, "vkCreateCommandPool", &missing)
	d.destroyCommandPool = loadProc[vk.PFNDestroyCommandPool](gdpa, device, "vkDestroyCommandPool", &missing)
	d.allocateCommandBuffers = loadProc[vk.PFNAllocateCommandBuffers](gdpa, device, "vkAllocateCommandBuffers", &missing)
	d.freeCommandBuffers = loadProc[vk.PFNFreeCommandBuffers](gdpa, device, "vkFreeCommandBuffers", &missing)
	d.resetCommandBuffer = loadProc[vk.PFNResetCommandBuffer](gdpa, device, "vkResetCommandBuffer", &missing)
	d.beginCommandBuffer = loadProc[vk.PFNBeginCommandBuffer](gdpa, device, "vkBeginCommandBuffer", &missing)
	d.endCommandBuffer = loadProc[vk.PFNEndCommandBuffer](gdpa, device, "vkEndCommandBuffer", &missing)

	d.cmdPipelineBarrier = loadProc[vk.PFNCmdPipelineBarrier](gdpa, device, "vkCmdPipelineBarrier", &missing)
	d.cmdCopyImage = loadProc[vk.PFNCmdCopyImage](gdpa, device, "vkCmdCopyImage", &missing)
	d.cmdBlitImage = loadProc[vk.PFNCmdBlitImage](gdpa, device, "vkCmdBlitImage", &missing)

	d.createImage = loadProc[vk.PFNCreateImage](gdpa, device, "vkCreateImage", &missing)
	d.destroyImage = loadProc[vk.PFNDestroyImage](gdpa, device, "vkDestroyImage", &missing)
	d.getImageMemoryRequirements = loadProc[vk.PFNGetImageMemoryRequirements](gdpa, device, "vkGetImageMemoryRequirements", &missing)
	d.allocateMemory = loadProc[vk.PFNAllocateMemory](gdpa, device, "vkAllocateMemory", &missing)
	d.freeMemory = loadProc[vk.PFNFreeMemory](gdpa, device, "vkFreeMemory", &missing)
	d.bindImageMemory = loadProc[vk.PFNBindImageMemory](gdpa, device, "vkBindImageMemory", &missing)

	d.createFence = loadProc[vk.PFNCreateFence](gdpa, device, "vkCreateFence", &missing)
	d.destroyFence = loadProc[vk.PFNDestroyFence](gdpa, device, "vkDestroyFence", &missing)
	d.waitForFences = loadProc[vk.PFNWaitForFences](gdpa, device, "vkWaitForFences", &missing)
	d.resetFences = loadProc[vk.PFNResetFences](gdpa, device, "vkResetFences", &missing)
	d.createSemaphore = loadProc[vk.PFNCreateSemaphore](gdpa, device, "vkCreateSemaphore", &missing)
	d.destroySemaphore = loadProc[vk.PFNDestroySemaphore](gdpa, device, "vkDestroySemaphore", &missing)

	if len(missing) > 0 {
		return debug.Errorf("next layer did not resolve: %v", missing)
	}
	return nil
}
