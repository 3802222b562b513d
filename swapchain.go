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
	"goarrg.com/gmath"

	"github.com/framegen/framegen/vk"
)

// swapchainRecord tracks one presentation chain. The image list is
// exactly what the next layer returned at creation time, in order; the
// images belong to the driver and are never freed here.
type swapchainRecord struct {
	handle vk.SwapchainKHR
	images []vk.Image
	format vk.Format
	extent gmath.Extent2i32

	// false when the chain was created by the verbatim retry and so
	// lacks the extra image and transfer usage bits. The engine must
	// bypass presents against such chains.
	augmented bool
}

// CreateSwapchainKHR augments the caller's creation parameters with one
// extra image (lower-bounded at 3) and transfer src/dst usage so the
// engine can blit in and out of the chain's images, then records the
// resulting chain and sizes the staging mirror for it.
func CreateSwapchainKHR(device vk.Device, createInfo *vk.SwapchainCreateInfoKHR, swapchain *vk.SwapchainKHR) vk.Result {
	rec := deviceByKey(vk.DispatchKey(device))
	if rec == nil {
		layer.logger.WPrintf("swapchain create on unknown device 0x%X", uintptr(device))
		return vk.ErrorInitializationFailed
	}

	augmented := true
	modInfo := *createInfo
	modInfo.MinImageCount = max(createInfo.MinImageCount+1, 3)
	modInfo.ImageUsage |= vk.ImageUsageTransferSrc | vk.ImageUsageTransferDst

	result := rec.disp.createSwapchain(device, &modInfo, swapchain)
	if result != vk.Success {
		// Retry once with the caller's parameters verbatim.
		augmented = false
		result = rec.disp.createSwapchain(device, createInfo, swapchain)
		if result != vk.Success {
			return result
		}
		layer.logger.WPrintf("augmented swapchain refused, chain 0x%X is passthrough only", uint64(*swapchain))
	}

	scRec := &swapchainRecord{
		handle: *swapchain,
		format: createInfo.ImageFormat,
		extent: gmath.Extent2i32{
			X: int32(createInfo.ImageExtent.Width),
			Y: int32(createInfo.ImageExtent.Height),
		},
		augmented: augmented,
	}

	var imageCount uint32
	if r := rec.disp.getSwapchainImages(device, *swapchain, &imageCount, nil); r != vk.Success {
		return r
	}
	scRec.images = make([]vk.Image, imageCount)
	if r := rec.disp.getSwapchainImages(device, *swapchain, &imageCount, scRec.images); r != vk.Success {
		return r
	}

	layer.mtx.Lock()
	rec.swapchains[*swapchain] = scRec
	layer.mtx.Unlock()

	if augmented {
		if !rec.mirror.ensure(rec, createInfo.ImageExtent.Width, createInfo.ImageExtent.Height, createInfo.ImageFormat) {
			layer.logger.WPrintf("staging mirror unavailable, presents bypass until next swapchain")
		}
	}

	layer.logger.IPrintf("swapchain %dx%d, %d images, format %s",
		scRec.extent.X, scRec.extent.Y, imageCount, scRec.format.String())
	return vk.Success
}

// DestroySwapchainKHR removes the record and delegates.
func DestroySwapchainKHR(device vk.Device, swapchain vk.SwapchainKHR) {
	rec := deviceByKey(vk.DispatchKey(device))
	if rec == nil {
		return
	}

	layer.mtx.Lock()
	delete(rec.swapchains, swapchain)
	layer.mtx.Unlock()

	rec.disp.destroySwapchain(device, swapchain)
}

func (rec *deviceRecord) swapchainByHandle(handle vk.SwapchainKHR) *swapchainRecord {
	layer.mtx.Lock()
	defer layer.mtx.Unlock()
	return rec.swapchains[handle]
}
