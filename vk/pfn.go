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

package vk

// VoidFunction is the untyped result of a proc-address lookup. Callers
// assert it to the concrete PFN type, the way C callers cast the raw
// function pointer. A nil VoidFunction means the operation is unknown to
// the layer below.
type VoidFunction any

// Proc-address resolution.
type (
	PFNGetInstanceProcAddr func(Instance, string) VoidFunction
	PFNGetDeviceProcAddr   func(Device, string) VoidFunction
)

// Instance-level operations.
type (
	PFNCreateInstance  func(*InstanceCreateInfo, *Instance) Result
	PFNDestroyInstance func(Instance)
	PFNCreateDevice    func(PhysicalDevice, *DeviceCreateInfo, *Device) Result

	PFNGetPhysicalDeviceMemoryProperties      func(PhysicalDevice, *PhysicalDeviceMemoryProperties)
	PFNGetPhysicalDeviceQueueFamilyProperties func(PhysicalDevice, *uint32, []QueueFamilyProperties)

	PFNEnumerateInstanceLayerProperties     func(*uint32, []LayerProperties) Result
	PFNEnumerateDeviceLayerProperties       func(PhysicalDevice, *uint32, []LayerProperties) Result
	PFNEnumerateInstanceExtensionProperties func(string, *uint32, []ExtensionProperties) Result
	PFNEnumerateDeviceExtensionProperties   func(PhysicalDevice, string, *uint32, []ExtensionProperties) Result
)

// Device-level operations.
type (
	PFNDestroyDevice  func(Device)
	PFNGetDeviceQueue func(Device, uint32, uint32, *Queue)
	PFNDeviceWaitIdle func(Device) Result

	PFNCreateSwapchainKHR    func(Device, *SwapchainCreateInfoKHR, *SwapchainKHR) Result
	PFNDestroySwapchainKHR   func(Device, SwapchainKHR)
	PFNGetSwapchainImagesKHR func(Device, SwapchainKHR, *uint32, []Image) Result
	PFNAcquireNextImageKHR   func(Device, SwapchainKHR, uint64, Semaphore, Fence, *uint32) Result
	PFNQueuePresentKHR       func(Queue, *PresentInfoKHR) Result

	PFNQueueSubmit   func(Queue, []SubmitInfo, Fence) Result
	PFNQueueWaitIdle func(Queue) Result

	PFNCreateCommandPool      func(Device, *CommandPoolCreateInfo, *CommandPool) Result
	PFNDestroyCommandPool     func(Device, CommandPool)
	PFNAllocateCommandBuffers func(Device, *CommandBufferAllocateInfo, []CommandBuffer) Result
	PFNFreeCommandBuffers     func(Device, CommandPool, []CommandBuffer)
	PFNResetCommandBuffer     func(CommandBuffer, CommandBufferResetFlags) Result
	PFNBeginCommandBuffer     func(CommandBuffer, *CommandBufferBeginInfo) Result
	PFNEndCommandBuffer       func(CommandBuffer) Result

	PFNCmdPipelineBarrier func(CommandBuffer, PipelineStageFlags, PipelineStageFlags, DependencyFlags, []MemoryBarrier, []BufferMemoryBarrier, []ImageMemoryBarrier)
	PFNCmdCopyImage       func(CommandBuffer, Image, ImageLayout, Image, ImageLayout, []ImageCopy)
	PFNCmdBlitImage       func(CommandBuffer, Image, ImageLayout, Image, ImageLayout, []ImageBlit, Filter)

	PFNCreateImage                func(Device, *ImageCreateInfo, *Image) Result
	PFNDestroyImage               func(Device, Image)
	PFNGetImageMemoryRequirements func(Device, Image, *MemoryRequirements)
	PFNAllocateMemory             func(Device, *MemoryAllocateInfo, *DeviceMemory) Result
	PFNFreeMemory                 func(Device, DeviceMemory)
	PFNBindImageMemory            func(Device, Image, DeviceMemory, uint64) Result

	PFNCreateFence      func(Device, *FenceCreateInfo, *Fence) Result
	PFNDestroyFence     func(Device, Fence)
	PFNWaitForFences    func(Device, []Fence, bool, uint64) Result
	PFNResetFences      func(Device, []Fence) Result
	PFNCreateSemaphore  func(Device, *SemaphoreCreateInfo, *Semaphore) Result
	PFNDestroySemaphore func(Device, Semaphore)
)
