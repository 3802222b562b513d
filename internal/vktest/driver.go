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

// Package vktest provides a scriptable stand-in for the next layer of
// the driver stack. It hands out handles whose first pointer-sized word
// is a real dispatch pointer, tracks image contents through copies and
// blits, and records every call so tests can assert exact next-layer
// call sequences.
package vktest

import (
	"fmt"
	"unsafe"

	"github.com/framegen/framegen/vk"
)

// Call is one recorded next-layer invocation.
type Call struct {
	Name string
	Args []any
}

type dispatchObject struct {
	dispatch uintptr
	_        uint64
}

// ImageState models one driver image. Content is an opaque label moved
// around by copies and blits; tests inject labels to stand in for
// rendered pixels.
type ImageState struct {
	Content string
	Layout  vk.ImageLayout
}

// SwapchainState models one chain: the created info and the image ring.
type SwapchainState struct {
	Info        vk.SwapchainCreateInfoKHR
	Images      []vk.Image
	nextAcquire int
}

type fenceState struct {
	signaled bool
}

type cmdState struct {
	recording bool
	ops       []func()
}

// Driver is the fake next layer. Zero value is not usable; call New.
type Driver struct {
	Calls []Call

	// scripted results, consumed front-to-back; empty means Success
	SwapchainCreateResults []vk.Result
	PresentResults         []vk.Result
	AcquireResults         []vk.Result
	CreateImageResult      vk.Result
	AllocateMemoryResult   vk.Result

	// MemoryTypes drives the mirror's memory-type scan. Defaults to a
	// host-visible type at 0 and a device-local type at 1.
	MemoryTypes []vk.MemoryType

	objects    []*dispatchObject
	images     map[vk.Image]*ImageState
	swapchains map[vk.SwapchainKHR]*SwapchainState
	fences     map[vk.Fence]*fenceState
	cmdBufs    map[vk.CommandBuffer]*cmdState
	memories   map[vk.DeviceMemory]bool

	instance vk.Instance
	device   vk.Device
	queue    vk.Queue

	nextHandle uint64
}

func New() *Driver {
	return &Driver{
		MemoryTypes: []vk.MemoryType{
			{PropertyFlags: vk.MemoryPropertyHostVisible | vk.MemoryPropertyHostCoherent},
			{PropertyFlags: vk.MemoryPropertyDeviceLocal, HeapIndex: 1},
		},
		images:     map[vk.Image]*ImageState{},
		swapchains: map[vk.SwapchainKHR]*SwapchainState{},
		fences:     map[vk.Fence]*fenceState{},
		cmdBufs:    map[vk.CommandBuffer]*cmdState{},
		memories:   map[vk.DeviceMemory]bool{},
		nextHandle: 0x1000,
	}
}

func (d *Driver) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

// CallNames returns the recorded call names in order.
func (d *Driver) CallNames() []string {
	names := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		names[i] = c.Name
	}
	return names
}

// CallCount returns how many times name was recorded.
func (d *Driver) CallCount(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log without touching driver state.
func (d *Driver) ResetCalls() {
	d.Calls = nil
}

func (d *Driver) newDispatchable(dispatch uintptr) uintptr {
	obj := &dispatchObject{}
	if dispatch == 0 {
		dispatch = uintptr(unsafe.Pointer(obj))
	}
	obj.dispatch = dispatch
	d.objects = append(d.objects, obj)
	return uintptr(unsafe.Pointer(obj))
}

func (d *Driver) handle() uint64 {
	d.nextHandle++
	return d.nextHandle
}

func (d *Driver) popResult(queue *[]vk.Result) vk.Result {
	if len(*queue) == 0 {
		return vk.Success
	}
	r := (*queue)[0]
	*queue = (*queue)[1:]
	return r
}

// InstanceLink builds the loader chain node consumed by instance
// creation.
func (d *Driver) InstanceLink() *vk.LayerInstanceCreateInfo {
	return &vk.LayerInstanceCreateInfo{
		Function: vk.LayerLinkInfo,
		Layer:    &vk.LayerInstanceLink{GetInstanceProcAddr: d.GetInstanceProcAddr},
	}
}

// DeviceLink builds the loader chain node consumed by device creation.
func (d *Driver) DeviceLink() *vk.LayerDeviceCreateInfo {
	return &vk.LayerDeviceCreateInfo{
		Function: vk.LayerLinkInfo,
		Layer: &vk.LayerDeviceLink{
			GetInstanceProcAddr: d.GetInstanceProcAddr,
			GetDeviceProcAddr:   d.GetDeviceProcAddr,
		},
	}
}

// Instance returns the last instance handed out by createInstance.
func (d *Driver) Instance() vk.Instance { return d.instance }

// Device returns the last device handed out by createDevice.
func (d *Driver) Device() vk.Device { return d.device }

// Queue returns the device's queue.
func (d *Driver) Queue() vk.Queue { return d.queue }

// Swapchain looks up chain state for assertions.
func (d *Driver) Swapchain(handle vk.SwapchainKHR) *SwapchainState {
	return d.swapchains[handle]
}

// Image looks up image state for assertions.
func (d *Driver) Image(handle vk.Image) *ImageState {
	return d.images[handle]
}

// SetImageContent stands in for the host rendering into an image.
func (d *Driver) SetImageContent(handle vk.Image, content string) {
	d.images[handle].Content = content
	d.images[handle].Layout = vk.ImageLayoutPresentSrcKHR
}

// FenceSignaled reports the fence's current state.
func (d *Driver) FenceSignaled(handle vk.Fence) bool {
	f := d.fences[handle]
	return f != nil && f.signaled
}

// SetNextAcquire forces the index returned by the next acquire.
func (d *Driver) SetNextAcquire(handle vk.SwapchainKHR, index int) {
	d.swapchains[handle].nextAcquire = index
}

func (d *Driver) GetInstanceProcAddr(_ vk.Instance, name string) vk.VoidFunction {
	switch name {
	case "vkCreateInstance":
		return vk.PFNCreateInstance(d.createInstance)
	case "vkDestroyInstance":
		return vk.PFNDestroyInstance(d.destroyInstance)
	case "vkCreateDevice":
		return vk.PFNCreateDevice(d.createDevice)
	case "vkGetPhysicalDeviceMemoryProperties":
		return vk.PFNGetPhysicalDeviceMemoryProperties(d.getPhysicalDeviceMemoryProperties)
	case "vkGetPhysicalDeviceQueueFamilyProperties":
		return vk.PFNGetPhysicalDeviceQueueFamilyProperties(d.getPhysicalDeviceQueueFamilyProperties)
	}
	return d.GetDeviceProcAddr(0, name)
}

func (d *Driver) GetDeviceProcAddr(_ vk.Device, name string) vk.VoidFunction {
	switch name {
	case "vkDestroyDevice":
		return vk.PFNDestroyDevice(d.destroyDevice)
	case "vkGetDeviceQueue":
		return vk.PFNGetDeviceQueue(d.getDeviceQueue)
	case "vkDeviceWaitIdle":
		return vk.PFNDeviceWaitIdle(d.deviceWaitIdle)
	case "vkCreateSwapchainKHR":
		return vk.PFNCreateSwapchainKHR(d.createSwapchain)
	case "vkDestroySwapchainKHR":
		return vk.PFNDestroySwapchainKHR(d.destroySwapchain)
	case "vkGetSwapchainImagesKHR":
		return vk.PFNGetSwapchainImagesKHR(d.getSwapchainImages)
	case "vkAcquireNextImageKHR":
		return vk.PFNAcquireNextImageKHR(d.acquireNextImage)
	case "vkQueuePresentKHR":
		return vk.PFNQueuePresentKHR(d.queuePresent)
	case "vkQueueSubmit":
		return vk.PFNQueueSubmit(d.queueSubmit)
	case "vkQueueWaitIdle":
		return vk.PFNQueueWaitIdle(d.queueWaitIdle)
	case "vkCreateCommandPool":
		return vk.PFNCreateCommandPool(d.createCommandPool)
	case "vkDestroyCommandPool":
		return vk.PFNDestroyCommandPool(d.destroyCommandPool)
	case "vkAllocateCommandBuffers":
		return vk.PFNAllocateCommandBuffers(d.allocateCommandBuffers)
	case "vkFreeCommandBuffers":
		return vk.PFNFreeCommandBuffers(d.freeCommandBuffers)
	case "vkResetCommandBuffer":
		return vk.PFNResetCommandBuffer(d.resetCommandBuffer)
	case "vkBeginCommandBuffer":
		return vk.PFNBeginCommandBuffer(d.beginCommandBuffer)
	case "vkEndCommandBuffer":
		return vk.PFNEndCommandBuffer(d.endCommandBuffer)
	case "vkCmdPipelineBarrier":
		return vk.PFNCmdPipelineBarrier(d.cmdPipelineBarrier)
	case "vkCmdCopyImage":
		return vk.PFNCmdCopyImage(d.cmdCopyImage)
	case "vkCmdBlitImage":
		return vk.PFNCmdBlitImage(d.cmdBlitImage)
	case "vkCreateImage":
		return vk.PFNCreateImage(d.createImage)
	case "vkDestroyImage":
		return vk.PFNDestroyImage(d.destroyImage)
	case "vkGetImageMemoryRequirements":
		return vk.PFNGetImageMemoryRequirements(d.getImageMemoryRequirements)
	case "vkAllocateMemory":
		return vk.PFNAllocateMemory(d.allocateMemory)
	case "vkFreeMemory":
		return vk.PFNFreeMemory(d.freeMemory)
	case "vkBindImageMemory":
		return vk.PFNBindImageMemory(d.bindImageMemory)
	case "vkCreateFence":
		return vk.PFNCreateFence(d.createFence)
	case "vkDestroyFence":
		return vk.PFNDestroyFence(d.destroyFence)
	case "vkWaitForFences":
		return vk.PFNWaitForFences(d.waitForFences)
	case "vkResetFences":
		return vk.PFNResetFences(d.resetFences)
	case "vkCreateSemaphore":
		return vk.PFNCreateSemaphore(d.createSemaphore)
	case "vkDestroySemaphore":
		return vk.PFNDestroySemaphore(d.destroySemaphore)
	}
	return nil
}

func (d *Driver) createInstance(_ *vk.InstanceCreateInfo, instance *vk.Instance) vk.Result {
	d.record("vkCreateInstance")
	d.instance = vk.Instance(d.newDispatchable(0))
	*instance = d.instance
	return vk.Success
}

func (d *Driver) destroyInstance(instance vk.Instance) {
	d.record("vkDestroyInstance", instance)
}

// NewPhysicalDevice hands out a physical device handle the way
// enumeration would.
func (d *Driver) NewPhysicalDevice() vk.PhysicalDevice {
	return vk.PhysicalDevice(d.newDispatchable(uintptr(unsafe.Pointer(d))))
}

func (d *Driver) createDevice(_ vk.PhysicalDevice, _ *vk.DeviceCreateInfo, device *vk.Device) vk.Result {
	d.record("vkCreateDevice")
	addr := d.newDispatchable(0)
	d.device = vk.Device(addr)
	d.queue = vk.Queue(d.newDispatchable(vk.DispatchKey(d.device)))
	return setOut(device, d.device)
}

func setOut[T any](out *T, v T) vk.Result {
	*out = v
	return vk.Success
}

func (d *Driver) destroyDevice(device vk.Device) {
	d.record("vkDestroyDevice", device)
}

func (d *Driver) getDeviceQueue(_ vk.Device, family, _ uint32, queue *vk.Queue) {
	d.record("vkGetDeviceQueue", family)
	*queue = d.queue
}

func (d *Driver) deviceWaitIdle(vk.Device) vk.Result {
	d.record("vkDeviceWaitIdle")
	return vk.Success
}

func (d *Driver) queueWaitIdle(vk.Queue) vk.Result {
	d.record("vkQueueWaitIdle")
	return vk.Success
}

func (d *Driver) getPhysicalDeviceMemoryProperties(_ vk.PhysicalDevice, props *vk.PhysicalDeviceMemoryProperties) {
	props.MemoryTypes = d.MemoryTypes
	props.MemoryHeaps = []vk.MemoryHeap{{Size: 1 << 30}, {Size: 1 << 32}}
}

func (d *Driver) getPhysicalDeviceQueueFamilyProperties(_ vk.PhysicalDevice, count *uint32, props []vk.QueueFamilyProperties) {
	if props == nil {
		*count = 1
		return
	}
	props[0] = vk.QueueFamilyProperties{QueueFlags: vk.QueueGraphics, QueueCount: 1}
	*count = 1
}

func (d *Driver) createSwapchain(_ vk.Device, createInfo *vk.SwapchainCreateInfoKHR, swapchain *vk.SwapchainKHR) vk.Result {
	if r := d.popResult(&d.SwapchainCreateResults); r != vk.Success {
		d.record("vkCreateSwapchainKHR", *createInfo, r)
		return r
	}

	handle := vk.SwapchainKHR(d.handle())
	state := &SwapchainState{Info: *createInfo}
	for i := uint32(0); i < createInfo.MinImageCount; i++ {
		img := vk.Image(d.handle())
		d.images[img] = &ImageState{Content: fmt.Sprintf("undef-%d", img)}
		state.Images = append(state.Images, img)
	}
	d.swapchains[handle] = state
	d.record("vkCreateSwapchainKHR", *createInfo, vk.Success)
	*swapchain = handle
	return vk.Success
}

func (d *Driver) destroySwapchain(_ vk.Device, swapchain vk.SwapchainKHR) {
	d.record("vkDestroySwapchainKHR", swapchain)
	delete(d.swapchains, swapchain)
}

func (d *Driver) getSwapchainImages(_ vk.Device, swapchain vk.SwapchainKHR, count *uint32, images []vk.Image) vk.Result {
	state := d.swapchains[swapchain]
	if state == nil {
		return vk.ErrorOutOfDateKHR
	}
	if images == nil {
		*count = uint32(len(state.Images))
		return vk.Success
	}
	copy(images, state.Images)
	*count = uint32(len(state.Images))
	return vk.Success
}

func (d *Driver) acquireNextImage(_ vk.Device, swapchain vk.SwapchainKHR, _ uint64, _ vk.Semaphore, fence vk.Fence, index *uint32) vk.Result {
	result := d.popResult(&d.AcquireResults)
	d.record("vkAcquireNextImageKHR", swapchain, result)
	if !result.Ok() {
		return result
	}
	state := d.swapchains[swapchain]
	*index = uint32(state.nextAcquire)
	state.nextAcquire = (state.nextAcquire + 1) % len(state.Images)
	if f := d.fences[fence]; f != nil {
		f.signaled = true
	}
	return result
}

func (d *Driver) queuePresent(_ vk.Queue, presentInfo *vk.PresentInfoKHR) vk.Result {
	result := d.popResult(&d.PresentResults)
	d.record("vkQueuePresentKHR",
		append([]vk.SwapchainKHR(nil), presentInfo.Swapchains...),
		append([]uint32(nil), presentInfo.ImageIndices...),
		result)
	for i := range presentInfo.Results {
		presentInfo.Results[i] = result
	}
	return result
}

func (d *Driver) queueSubmit(_ vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	names := make([]int, 0, len(submits))
	for _, submit := range submits {
		names = append(names, len(submit.WaitSemaphores))
		for _, cb := range submit.CommandBuffers {
			if state := d.cmdBufs[cb]; state != nil {
				for _, op := range state.ops {
					op()
				}
			}
		}
	}
	d.record("vkQueueSubmit", names)
	if f := d.fences[fence]; f != nil {
		f.signaled = true
	}
	return vk.Success
}

func (d *Driver) createCommandPool(_ vk.Device, createInfo *vk.CommandPoolCreateInfo, pool *vk.CommandPool) vk.Result {
	d.record("vkCreateCommandPool", createInfo.Flags)
	return setOut(pool, vk.CommandPool(d.handle()))
}

func (d *Driver) destroyCommandPool(_ vk.Device, pool vk.CommandPool) {
	d.record("vkDestroyCommandPool", pool)
}

func (d *Driver) allocateCommandBuffers(_ vk.Device, info *vk.CommandBufferAllocateInfo, bufs []vk.CommandBuffer) vk.Result {
	d.record("vkAllocateCommandBuffers", info.CommandBufferCount)
	for i := range bufs {
		cb := vk.CommandBuffer(d.newDispatchable(vk.DispatchKey(d.device)))
		d.cmdBufs[cb] = &cmdState{}
		bufs[i] = cb
	}
	return vk.Success
}

func (d *Driver) freeCommandBuffers(_ vk.Device, _ vk.CommandPool, bufs []vk.CommandBuffer) {
	d.record("vkFreeCommandBuffers", len(bufs))
	for _, cb := range bufs {
		delete(d.cmdBufs, cb)
	}
}

func (d *Driver) resetCommandBuffer(cb vk.CommandBuffer, _ vk.CommandBufferResetFlags) vk.Result {
	if state := d.cmdBufs[cb]; state != nil {
		state.ops = nil
		state.recording = false
	}
	return vk.Success
}

func (d *Driver) beginCommandBuffer(cb vk.CommandBuffer, _ *vk.CommandBufferBeginInfo) vk.Result {
	if state := d.cmdBufs[cb]; state != nil {
		state.recording = true
	}
	return vk.Success
}

func (d *Driver) endCommandBuffer(cb vk.CommandBuffer) vk.Result {
	if state := d.cmdBufs[cb]; state != nil {
		state.recording = false
	}
	return vk.Success
}

func (d *Driver) cmdPipelineBarrier(cb vk.CommandBuffer, _, _ vk.PipelineStageFlags, _ vk.DependencyFlags,
	_ []vk.MemoryBarrier, _ []vk.BufferMemoryBarrier, imageBarriers []vk.ImageMemoryBarrier,
) {
	state := d.cmdBufs[cb]
	if state == nil {
		return
	}
	barriers := append([]vk.ImageMemoryBarrier(nil), imageBarriers...)
	state.ops = append(state.ops, func() {
		for _, b := range barriers {
			if img := d.images[b.Image]; img != nil {
				img.Layout = b.NewLayout
			}
		}
	})
}

func (d *Driver) cmdCopyImage(cb vk.CommandBuffer, src vk.Image, _ vk.ImageLayout, dst vk.Image, _ vk.ImageLayout, _ []vk.ImageCopy) {
	if state := d.cmdBufs[cb]; state != nil {
		state.ops = append(state.ops, func() {
			d.images[dst].Content = d.images[src].Content
		})
	}
}

func (d *Driver) cmdBlitImage(cb vk.CommandBuffer, src vk.Image, _ vk.ImageLayout, dst vk.Image, _ vk.ImageLayout, _ []vk.ImageBlit, _ vk.Filter) {
	if state := d.cmdBufs[cb]; state != nil {
		state.ops = append(state.ops, func() {
			d.images[dst].Content = d.images[src].Content
		})
	}
}

func (d *Driver) createImage(_ vk.Device, _ *vk.ImageCreateInfo, image *vk.Image) vk.Result {
	if d.CreateImageResult != vk.Success {
		return d.CreateImageResult
	}
	handle := vk.Image(d.handle())
	d.images[handle] = &ImageState{}
	d.record("vkCreateImage", handle)
	return setOut(image, handle)
}

func (d *Driver) destroyImage(_ vk.Device, image vk.Image) {
	d.record("vkDestroyImage", image)
	delete(d.images, image)
}

func (d *Driver) getImageMemoryRequirements(_ vk.Device, _ vk.Image, req *vk.MemoryRequirements) {
	*req = vk.MemoryRequirements{Size: 1 << 20, Alignment: 256, MemoryTypeBits: 0b11}
}

func (d *Driver) allocateMemory(_ vk.Device, info *vk.MemoryAllocateInfo, memory *vk.DeviceMemory) vk.Result {
	if d.AllocateMemoryResult != vk.Success {
		return d.AllocateMemoryResult
	}
	handle := vk.DeviceMemory(d.handle())
	d.memories[handle] = true
	d.record("vkAllocateMemory", info.MemoryTypeIndex)
	return setOut(memory, handle)
}

func (d *Driver) freeMemory(_ vk.Device, memory vk.DeviceMemory) {
	d.record("vkFreeMemory", memory)
	delete(d.memories, memory)
}

func (d *Driver) bindImageMemory(_ vk.Device, _ vk.Image, _ vk.DeviceMemory, _ uint64) vk.Result {
	return vk.Success
}

func (d *Driver) createFence(_ vk.Device, info *vk.FenceCreateInfo, fence *vk.Fence) vk.Result {
	handle := vk.Fence(d.handle())
	d.fences[handle] = &fenceState{signaled: info.Flags&vk.FenceCreateSignaled != 0}
	d.record("vkCreateFence", info.Flags)
	return setOut(fence, handle)
}

func (d *Driver) destroyFence(_ vk.Device, fence vk.Fence) {
	d.record("vkDestroyFence", fence)
	delete(d.fences, fence)
}

func (d *Driver) waitForFences(_ vk.Device, fences []vk.Fence, _ bool, _ uint64) vk.Result {
	for _, f := range fences {
		state := d.fences[f]
		if state == nil || !state.signaled {
			// Nothing pending can ever signal this fence; a real wait
			// would hang forever.
			return vk.Timeout
		}
	}
	return vk.Success
}

func (d *Driver) resetFences(_ vk.Device, fences []vk.Fence) vk.Result {
	for _, f := range fences {
		if state := d.fences[f]; state != nil {
			state.signaled = false
		}
	}
	return vk.Success
}

func (d *Driver) createSemaphore(_ vk.Device, _ *vk.SemaphoreCreateInfo, semaphore *vk.Semaphore) vk.Result {
	return setOut(semaphore, vk.Semaphore(d.handle()))
}

func (d *Driver) destroySemaphore(_ vk.Device, _ vk.Semaphore) {}
