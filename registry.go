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
	"sync"
	"sync/atomic"

	"goarrg.com/debug"
	"golang.org/x/exp/maps"

	"github.com/framegen/framegen/vk"
)

type instanceRecord struct {
	instance vk.Instance

	getInstanceProcAddr      vk.PFNGetInstanceProcAddr
	destroyInstance          vk.PFNDestroyInstance
	getMemoryProperties      vk.PFNGetPhysicalDeviceMemoryProperties
	getQueueFamilyProperties vk.PFNGetPhysicalDeviceQueueFamilyProperties
}

type deviceRecord struct {
	pin recordPin

	device         vk.Device
	physicalDevice vk.PhysicalDevice

	graphicsFamily uint32
	queue          vk.Queue

	cmdPool vk.CommandPool
	cmdBuf  vk.CommandBuffer
	fence   vk.Fence

	disp deviceDispatch

	// guarded by layer.mtx
	swapchains map[vk.SwapchainKHR]*swapchainRecord

	mirror stagingMirror

	frameCount   atomic.Uint64
	doubledCount atomic.Uint64
}

type layerState struct {
	mtx    sync.Mutex
	logger *debug.Logger

	initOnce sync.Once

	config     Config
	controller TimingController
	stats      PerfStats

	// keyed by dispatch key, never by handle bit pattern
	instances map[uintptr]*instanceRecord
	devices   map[uintptr]*deviceRecord

	totalFrames  atomic.Uint64
	totalDoubled atomic.Uint64
}

var layer = layerState{
	logger:    debug.NewLogger("framegen"),
	config:    DefaultConfig(),
	instances: map[uintptr]*instanceRecord{},
	devices:   map[uintptr]*deviceRecord{},
}

func instanceByKey(key uintptr) *instanceRecord {
	layer.mtx.Lock()
	defer layer.mtx.Unlock()
	return layer.instances[key]
}

func deviceByKey(key uintptr) *deviceRecord {
	layer.mtx.Lock()
	defer layer.mtx.Unlock()
	return layer.devices[key]
}

// Configure replaces the layer config before or between frames. Invalid
// values are clamped the same way LoadConfig clamps them.
func Configure(cfg Config) {
	cfg.validate()
	layer.mtx.Lock()
	layer.config = cfg
	layer.mtx.Unlock()
	layer.controller.Configure(cfg)
	layer.logger.IPrintf("configured: %s", cfg.String())
}

// CreateInstance hooks instance creation: it consumes the layer link,
// delegates creation to the next layer and records the instance-level
// entry points the layer needs later.
func CreateInstance(createInfo *vk.InstanceCreateInfo, instance *vk.Instance) vk.Result {
	layer.initOnce.Do(func() {
		layer.controller.Configure(layer.config)
	})

	link := vk.FindLayerInstanceLink(createInfo.Next)
	if link == nil || link.Layer == nil {
		layer.logger.EPrintf("no layer instance link in create-info chain")
		return vk.ErrorInitializationFailed
	}

	gipa := link.Layer.GetInstanceProcAddr
	// Advance the chain so the next layer sees its own link.
	link.Layer = link.Layer.Next

	createNext, ok := gipa(vk.NullHandle, "vkCreateInstance").(vk.PFNCreateInstance)
	if !ok {
		return vk.ErrorInitializationFailed
	}

	if result := createNext(createInfo, instance); result != vk.Success {
		return result
	}

	rec := &instanceRecord{
		instance:            *instance,
		getInstanceProcAddr: gipa,
	}
	rec.destroyInstance, _ = gipa(*instance, "vkDestroyInstance").(vk.PFNDestroyInstance)
	rec.getMemoryProperties, _ = gipa(*instance, "vkGetPhysicalDeviceMemoryProperties").(vk.PFNGetPhysicalDeviceMemoryProperties)
	rec.getQueueFamilyProperties, _ = gipa(*instance, "vkGetPhysicalDeviceQueueFamilyProperties").(vk.PFNGetPhysicalDeviceQueueFamilyProperties)
	if rec.destroyInstance == nil || rec.getMemoryProperties == nil || rec.getQueueFamilyProperties == nil {
		layer.logger.EPrintf("next layer did not resolve required instance procs")
		if rec.destroyInstance != nil {
			rec.destroyInstance(*instance)
		}
		return vk.ErrorInitializationFailed
	}

	layer.mtx.Lock()
	layer.instances[vk.DispatchKey(*instance)] = rec
	layer.mtx.Unlock()

	layer.logger.IPrintf("layer active, instance 0x%X", uintptr(*instance))
	return vk.Success
}

// DestroyInstance removes the record and delegates.
func DestroyInstance(instance vk.Instance) {
	key := vk.DispatchKey(instance)

	layer.mtx.Lock()
	rec := layer.instances[key]
	delete(layer.instances, key)
	layer.mtx.Unlock()

	if rec == nil {
		layer.logger.WPrintf("destroy of unknown instance 0x%X", uintptr(instance))
		return
	}
	rec.destroyInstance(instance)
}

// CreateDevice hooks device creation: consume and advance the device
// layer link, delegate, resolve the full device dispatch table, then set
// up the queue, command pool, reusable command buffer and fence.
func CreateDevice(physicalDevice vk.PhysicalDevice, createInfo *vk.DeviceCreateInfo, device *vk.Device) vk.Result {
	link := vk.FindLayerDeviceLink(createInfo.Next)
	if link == nil || link.Layer == nil {
		layer.logger.EPrintf("no layer device link in create-info chain")
		return vk.ErrorInitializationFailed
	}

	gipa := link.Layer.GetInstanceProcAddr
	gdpa := link.Layer.GetDeviceProcAddr
	link.Layer = link.Layer.Next

	createNext, ok := gipa(vk.NullHandle, "vkCreateDevice").(vk.PFNCreateDevice)
	if !ok {
		return vk.ErrorInitializationFailed
	}

	if result := createNext(physicalDevice, createInfo, device); result != vk.Success {
		return result
	}

	rec := &deviceRecord{
		device:         *device,
		physicalDevice: physicalDevice,
		swapchains:     map[vk.SwapchainKHR]*swapchainRecord{},
	}
	rec.pin.pin()
	if err := rec.disp.resolve(gdpa, *device); err != nil {
		layer.logger.EPrintf("device dispatch: %s", err.Error())
		if rec.disp.destroyDevice != nil {
			rec.disp.destroyDevice(*device)
		}
		return vk.ErrorInitializationFailed
	}

	if len(createInfo.QueueCreateInfos) > 0 {
		rec.graphicsFamily = createInfo.QueueCreateInfos[0].QueueFamilyIndex
	}
	rec.disp.getDeviceQueue(*device, rec.graphicsFamily, 0, &rec.queue)

	if result := rec.setupResources(); result != vk.Success {
		rec.teardownResources()
		rec.disp.destroyDevice(*device)
		return result
	}

	layer.mtx.Lock()
	layer.devices[vk.DispatchKey(*device)] = rec
	// Queues dispatch through the same table as their device, so the
	// present hook finds the record by the queue's key.
	if qk := vk.DispatchKey(rec.queue); qk != vk.DispatchKey(*device) {
		layer.devices[qk] = rec
	}
	layer.mtx.Unlock()

	layer.logger.IPrintf("device ready, queue family %d", rec.graphicsFamily)
	return vk.Success
}

func (rec *deviceRecord) setupResources() vk.Result {
	poolInfo := vk.CommandPoolCreateInfo{
		Flags:            vk.CommandPoolCreateResetCommandBuffer,
		QueueFamilyIndex: rec.graphicsFamily,
	}
	if result := rec.disp.createCommandPool(rec.device, &poolInfo, &rec.cmdPool); result != vk.Success {
		return result
	}

	cmdInfo := vk.CommandBufferAllocateInfo{
		CommandPool:        rec.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	bufs := make([]vk.CommandBuffer, 1)
	if result := rec.disp.allocateCommandBuffers(rec.device, &cmdInfo, bufs); result != vk.Success {
		return result
	}
	rec.cmdBuf = bufs[0]

	fenceInfo := vk.FenceCreateInfo{Flags: vk.FenceCreateSignaled}
	return rec.disp.createFence(rec.device, &fenceInfo, &rec.fence)
}

func (rec *deviceRecord) teardownResources() {
	if rec.fence != vk.NullHandle {
		rec.disp.destroyFence(rec.device, rec.fence)
		rec.fence = vk.NullHandle
	}
	if rec.cmdBuf != 0 {
		rec.disp.freeCommandBuffers(rec.device, rec.cmdPool, []vk.CommandBuffer{rec.cmdBuf})
		rec.cmdBuf = 0
	}
	if rec.cmdPool != vk.NullHandle {
		rec.disp.destroyCommandPool(rec.device, rec.cmdPool)
		rec.cmdPool = vk.NullHandle
	}
}

// DestroyDevice releases the mirror, fence, command buffer and pool,
// then delegates.
func DestroyDevice(device vk.Device) {
	key := vk.DispatchKey(device)

	layer.mtx.Lock()
	rec := layer.devices[key]
	delete(layer.devices, key)
	if rec != nil {
		if qk := vk.DispatchKey(rec.queue); qk != key {
			delete(layer.devices, qk)
		}
	}
	layer.mtx.Unlock()

	if rec == nil {
		layer.logger.WPrintf("destroy of unknown device 0x%X", uintptr(device))
		return
	}
	rec.pin.verify()

	if len(rec.swapchains) > 0 {
		layer.logger.WPrintf("device destroyed with %d live swapchains: %v",
			len(rec.swapchains), maps.Keys(rec.swapchains))
	}

	rec.mirror.destroy(rec)
	rec.teardownResources()

	layer.logger.IPrintf("device destroyed, frames %d, doubled %d",
		rec.frameCount.Load(), rec.doubledCount.Load())

	rec.disp.destroyDevice(device)
	rec.pin.release()
}
