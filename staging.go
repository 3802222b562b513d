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

import "github.com/framegen/framegen/vk"

type stagingImage struct {
	image  vk.Image
	memory vk.DeviceMemory
	valid  bool
}

// stagingMirror retains the last two presented images in device-local
// storage. Both slots are always sized identically; a resize happens
// only behind a device-wide idle so no in-flight work can still
// reference the freed images.
type stagingMirror struct {
	prev stagingImage
	cur  stagingImage

	width  uint32
	height uint32
	format vk.Format

	hasPrev bool
}

func (m *stagingMirror) valid() bool {
	return m.prev.valid && m.cur.valid
}

// ensure (re)configures the mirror for the given extent and format.
// Returns false when allocation failed; the mirror is then fully torn
// down and presents fall through to bypass.
func (m *stagingMirror) ensure(rec *deviceRecord, width, height uint32, format vk.Format) bool {
	if m.valid() && m.width == width && m.height == height && m.format == format {
		return true
	}

	rec.disp.deviceWaitIdle(rec.device)
	m.destroyImage(rec, &m.prev)
	m.destroyImage(rec, &m.cur)

	if !m.createImage(rec, &m.prev, width, height, format) ||
		!m.createImage(rec, &m.cur, width, height, format) {
		m.destroyImage(rec, &m.prev)
		m.destroyImage(rec, &m.cur)
		return false
	}

	m.width = width
	m.height = height
	m.format = format
	m.hasPrev = false

	layer.logger.VPrintf("staging mirror %dx%d %s", width, height, format.String())
	return true
}

// swap makes the image captured this present the previous for the next.
func (m *stagingMirror) swap() {
	m.prev, m.cur = m.cur, m.prev
	m.hasPrev = true
}

func (m *stagingMirror) destroy(rec *deviceRecord) {
	m.destroyImage(rec, &m.prev)
	m.destroyImage(rec, &m.cur)
	m.hasPrev = false
}

func (m *stagingMirror) createImage(rec *deviceRecord, img *stagingImage, width, height uint32, format vk.Format) bool {
	info := vk.ImageCreateInfo{
		ImageType:     vk.ImageType2D,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageTransferSrc | vk.ImageUsageTransferDst,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	if result := rec.disp.createImage(rec.device, &info, &img.image); result != vk.Success {
		layer.logger.WPrintf("staging image create: %s", result.String())
		return false
	}

	var memReq vk.MemoryRequirements
	rec.disp.getImageMemoryRequirements(rec.device, img.image, &memReq)

	allocInfo := vk.MemoryAllocateInfo{
		AllocationSize:  memReq.Size,
		MemoryTypeIndex: findMemoryType(rec.physicalDevice, memReq.MemoryTypeBits, vk.MemoryPropertyDeviceLocal),
	}
	if result := rec.disp.allocateMemory(rec.device, &allocInfo, &img.memory); result != vk.Success {
		layer.logger.WPrintf("staging memory alloc: %s", result.String())
		rec.disp.destroyImage(rec.device, img.image)
		img.image = vk.NullHandle
		return false
	}

	if result := rec.disp.bindImageMemory(rec.device, img.image, img.memory, 0); result != vk.Success {
		layer.logger.WPrintf("staging memory bind: %s", result.String())
		rec.disp.destroyImage(rec.device, img.image)
		rec.disp.freeMemory(rec.device, img.memory)
		img.image = vk.NullHandle
		img.memory = vk.NullHandle
		return false
	}

	img.valid = true
	return true
}

func (m *stagingMirror) destroyImage(rec *deviceRecord, img *stagingImage) {
	if img.image != vk.NullHandle {
		rec.disp.destroyImage(rec.device, img.image)
		img.image = vk.NullHandle
	}
	if img.memory != vk.NullHandle {
		rec.disp.freeMemory(rec.device, img.memory)
		img.memory = vk.NullHandle
	}
	img.valid = false
}

// findMemoryType linearly scans the physical device's memory types for
// the first one intersecting the requirement mask with the wanted
// property flags. The scan runs only at mirror (re)configuration.
func findMemoryType(physicalDevice vk.PhysicalDevice, typeBits uint32, props vk.MemoryPropertyFlags) uint32 {
	layer.mtx.Lock()
	var getProps vk.PFNGetPhysicalDeviceMemoryProperties
	for _, inst := range layer.instances {
		if inst.getMemoryProperties != nil {
			getProps = inst.getMemoryProperties
			break
		}
	}
	layer.mtx.Unlock()

	if getProps == nil {
		return 0
	}

	var memProps vk.PhysicalDeviceMemoryProperties
	getProps(physicalDevice, &memProps)
	for i, t := range memProps.MemoryTypes {
		if typeBits&(1<<uint32(i)) != 0 && t.PropertyFlags.HasBits(props) {
			return uint32(i)
		}
	}
	return 0
}
