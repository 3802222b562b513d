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
	"time"

	"github.com/framegen/framegen/vk"
)

// QueuePresentKHR is the per-present state machine. One host present
// becomes up to two display-visible presents: the synthesised in-between
// image, then the real image blitted into a freshly acquired slot.
//
// The sequence runs entirely on the calling thread; the device fence
// serialises back-to-back sequences on the same device.
func QueuePresentKHR(queue vk.Queue, presentInfo *vk.PresentInfoKHR) vk.Result {
	rec := deviceByKey(vk.DispatchKey(queue))
	if rec == nil {
		layer.logger.EPrintf("present on unknown queue 0x%X", uintptr(queue))
		return vk.ErrorInitializationFailed
	}
	rec.pin.verify()

	if !layer.config.Enabled || layer.controller.Throttled() || len(presentInfo.Swapchains) == 0 {
		return rec.disp.queuePresent(queue, presentInfo)
	}

	rec.frameCount.Add(1)
	layer.totalFrames.Add(1)

	// Only the first chain is augmented; the rest are forwarded as-is
	// after the sequence, unless a present of the first chain failed.
	sc := rec.swapchainByHandle(presentInfo.Swapchains[0])
	imageIndex := presentInfo.ImageIndices[0]

	if sc == nil || !sc.augmented || len(sc.images) == 0 || imageIndex >= uint32(len(sc.images)) {
		return rec.disp.queuePresent(queue, presentInfo)
	}

	// The mirror is sized at chain creation; a failed or mismatched
	// mirror bypasses until the next chain creation re-ensures it.
	width := uint32(sc.extent.X)
	height := uint32(sc.extent.Y)
	if !rec.mirror.valid() || rec.mirror.width != width || rec.mirror.height != height || rec.mirror.format != sc.format {
		return rec.disp.queuePresent(queue, presentInfo)
	}

	start := time.Now()
	gameImage := sc.images[imageIndex]
	hasPrev := rec.mirror.hasPrev

	// Stage A: capture the outgoing image into staging.cur, and either
	// overwrite it with the previous frame (B1) or transition it back
	// untouched (B0).
	rec.disp.waitForFences(rec.device, []vk.Fence{rec.fence}, true, vk.TimeoutInfinite)
	rec.disp.resetFences(rec.device, []vk.Fence{rec.fence})

	rec.disp.resetCommandBuffer(rec.cmdBuf, 0)
	rec.disp.beginCommandBuffer(rec.cmdBuf, &vk.CommandBufferBeginInfo{Flags: vk.CommandBufferUsageOneTimeSubmit})

	rec.transitionImage(gameImage,
		vk.ImageLayoutPresentSrcKHR, vk.ImageLayoutTransferSrcOptimal,
		vk.AccessMemoryRead, vk.AccessTransferRead,
		vk.PipelineStageBottomOfPipe, vk.PipelineStageTransfer)
	rec.transitionImage(rec.mirror.cur.image,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		vk.AccessNone, vk.AccessTransferWrite,
		vk.PipelineStageTopOfPipe, vk.PipelineStageTransfer)

	rec.disp.cmdCopyImage(rec.cmdBuf,
		gameImage, vk.ImageLayoutTransferSrcOptimal,
		rec.mirror.cur.image, vk.ImageLayoutTransferDstOptimal,
		[]vk.ImageCopy{{
			SrcSubresource: colorLayers(),
			DstSubresource: colorLayers(),
			Extent:         vk.Extent3D{Width: width, Height: height, Depth: 1},
		}})

	if hasPrev {
		// Stage B1: the synthesis hook. The canonical synthesiser
		// pastes the previous frame; a smarter one may also sample
		// staging.cur and a motion field, as long as gameImage ends
		// holding the early-slot image at the same extent and format.
		rec.transitionImage(rec.mirror.prev.image,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
			vk.AccessTransferWrite, vk.AccessTransferRead,
			vk.PipelineStageTransfer, vk.PipelineStageTransfer)
		rec.transitionImage(gameImage,
			vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutTransferDstOptimal,
			vk.AccessTransferRead, vk.AccessTransferWrite,
			vk.PipelineStageTransfer, vk.PipelineStageTransfer)

		rec.disp.cmdBlitImage(rec.cmdBuf,
			rec.mirror.prev.image, vk.ImageLayoutTransferSrcOptimal,
			gameImage, vk.ImageLayoutTransferDstOptimal,
			[]vk.ImageBlit{fullExtentBlit(width, height)}, vk.FilterNearest)

		rec.transitionImage(gameImage,
			vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrcKHR,
			vk.AccessTransferWrite, vk.AccessMemoryRead,
			vk.PipelineStageTransfer, vk.PipelineStageBottomOfPipe)
	} else {
		// Stage B0: first present after a mirror (re)configuration.
		rec.transitionImage(gameImage,
			vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutPresentSrcKHR,
			vk.AccessTransferRead, vk.AccessMemoryRead,
			vk.PipelineStageTransfer, vk.PipelineStageBottomOfPipe)
	}

	rec.disp.endCommandBuffer(rec.cmdBuf)

	// Stage C: submit the capture, honouring the caller's wait
	// semaphores at transfer stage, then block on the engine fence.
	submit := vk.SubmitInfo{CommandBuffers: []vk.CommandBuffer{rec.cmdBuf}}
	if len(presentInfo.WaitSemaphores) > 0 {
		submit.WaitSemaphores = presentInfo.WaitSemaphores
		submit.WaitDstStageMask = make([]vk.PipelineStageFlags, len(presentInfo.WaitSemaphores))
		for i := range submit.WaitDstStageMask {
			submit.WaitDstStageMask[i] = vk.PipelineStageTransfer
		}
	}
	if result := rec.disp.queueSubmit(queue, []vk.SubmitInfo{submit}, rec.fence); result != vk.Success {
		rec.signalFence(queue)
		return result
	}
	rec.disp.waitForFences(rec.device, []vk.Fence{rec.fence}, true, vk.TimeoutInfinite)

	worst := vk.Success

	if hasPrev {
		synthInfo := vk.PresentInfoKHR{
			Swapchains:   []vk.SwapchainKHR{sc.handle},
			ImageIndices: []uint32{imageIndex},
		}
		switch result := rec.disp.queuePresent(queue, &synthInfo); result {
		case vk.Success, vk.SuboptimalKHR:
			rec.doubledCount.Add(1)
			layer.totalDoubled.Add(1)
			layer.stats.framesGenerated.Add(1)
			if result == vk.SuboptimalKHR {
				worst = vk.SuboptimalKHR
			}

			// Stage D: acquire a fresh slot and present the real frame.
			realResult := rec.presentReal(queue, sc, width, height)
			if !realResult.Ok() {
				return realResult
			}
			if realResult == vk.SuboptimalKHR {
				worst = vk.SuboptimalKHR
			}
		case vk.ErrorOutOfDateKHR:
			// Recoverable: no extra acquire against a dead surface.
			// Stage E still runs; the caller's recreate path follows.
			worst = result
			layer.stats.framesDropped.Add(1)
		default:
			return result
		}
	} else {
		// First present: one real present of chain 0 only, wait
		// semaphores already consumed by the capture submit. Chains
		// 1..N are forwarded after the sequence like any other.
		firstInfo := vk.PresentInfoKHR{
			Swapchains:   presentInfo.Swapchains[:1],
			ImageIndices: presentInfo.ImageIndices[:1],
		}
		if presentInfo.Results != nil {
			firstInfo.Results = presentInfo.Results[:1]
		}
		result := rec.disp.queuePresent(queue, &firstInfo)
		if !result.Ok() {
			return result
		}
		if result == vk.SuboptimalKHR {
			worst = vk.SuboptimalKHR
		}
	}

	// Stage E: the image captured this sequence becomes the previous.
	rec.mirror.swap()

	if worst.Ok() && len(presentInfo.Swapchains) > 1 {
		extraInfo := vk.PresentInfoKHR{
			Swapchains:   presentInfo.Swapchains[1:],
			ImageIndices: presentInfo.ImageIndices[1:],
		}
		if presentInfo.Results != nil {
			extraInfo.Results = presentInfo.Results[1:]
		}
		if result := rec.disp.queuePresent(queue, &extraInfo); !result.Ok() {
			worst = result
		} else if result == vk.SuboptimalKHR && worst == vk.Success {
			worst = vk.SuboptimalKHR
		}
	}

	if presentInfo.Results != nil {
		presentInfo.Results[0] = worst
	}

	frameMs := float32(time.Since(start).Seconds() * 1e3)
	layer.controller.OnFrameComplete(frameMs)
	layer.stats.observePresent(frameMs, layer.controller.Temperature())

	if n := rec.frameCount.Load(); n%300 == 0 {
		doubled := rec.doubledCount.Load()
		layer.logger.IPrintf("%d frames, %d doubled (%.0f%% boost)",
			n, doubled, float64(doubled)*100/float64(n))
	}

	return worst
}

// presentReal acquires the next chain image, blits the captured current
// frame into it and presents it. This is the second display-visible
// present of an augmented sequence.
func (rec *deviceRecord) presentReal(queue vk.Queue, sc *swapchainRecord, width, height uint32) vk.Result {
	rec.disp.resetFences(rec.device, []vk.Fence{rec.fence})

	var newIndex uint32
	acquired := rec.disp.acquireNextImage(rec.device, sc.handle, vk.TimeoutInfinite, vk.NullHandle, rec.fence, &newIndex)
	if !acquired.Ok() {
		rec.signalFence(queue)
		return acquired
	}
	rec.disp.waitForFences(rec.device, []vk.Fence{rec.fence}, true, vk.TimeoutInfinite)

	if newIndex >= uint32(len(sc.images)) {
		return vk.ErrorOutOfDateKHR
	}
	target := sc.images[newIndex]

	rec.disp.resetFences(rec.device, []vk.Fence{rec.fence})

	rec.disp.resetCommandBuffer(rec.cmdBuf, 0)
	rec.disp.beginCommandBuffer(rec.cmdBuf, &vk.CommandBufferBeginInfo{Flags: vk.CommandBufferUsageOneTimeSubmit})

	rec.transitionImage(rec.mirror.cur.image,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal,
		vk.AccessTransferWrite, vk.AccessTransferRead,
		vk.PipelineStageTransfer, vk.PipelineStageTransfer)
	rec.transitionImage(target,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		vk.AccessNone, vk.AccessTransferWrite,
		vk.PipelineStageTopOfPipe, vk.PipelineStageTransfer)

	rec.disp.cmdBlitImage(rec.cmdBuf,
		rec.mirror.cur.image, vk.ImageLayoutTransferSrcOptimal,
		target, vk.ImageLayoutTransferDstOptimal,
		[]vk.ImageBlit{fullExtentBlit(width, height)}, vk.FilterNearest)

	rec.transitionImage(target,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrcKHR,
		vk.AccessTransferWrite, vk.AccessMemoryRead,
		vk.PipelineStageTransfer, vk.PipelineStageBottomOfPipe)

	rec.disp.endCommandBuffer(rec.cmdBuf)

	submit := vk.SubmitInfo{CommandBuffers: []vk.CommandBuffer{rec.cmdBuf}}
	if result := rec.disp.queueSubmit(queue, []vk.SubmitInfo{submit}, rec.fence); result != vk.Success {
		rec.signalFence(queue)
		return result
	}
	rec.disp.waitForFences(rec.device, []vk.Fence{rec.fence}, true, vk.TimeoutInfinite)

	realInfo := vk.PresentInfoKHR{
		Swapchains:   []vk.SwapchainKHR{sc.handle},
		ImageIndices: []uint32{newIndex},
	}
	result := rec.disp.queuePresent(queue, &realInfo)
	if result == vk.Success && acquired == vk.SuboptimalKHR {
		return vk.SuboptimalKHR
	}
	return result
}

// signalFence restores the fence to the signalled state after an
// aborted sequence so the next sequence's wait cannot hang. An empty
// submit is the only host-side way to signal a fence.
func (rec *deviceRecord) signalFence(queue vk.Queue) {
	if rec.disp.queueSubmit(queue, nil, rec.fence) == vk.Success {
		rec.disp.waitForFences(rec.device, []vk.Fence{rec.fence}, true, vk.TimeoutInfinite)
	}
}

func (rec *deviceRecord) transitionImage(image vk.Image,
	oldLayout, newLayout vk.ImageLayout,
	srcAccess, dstAccess vk.AccessFlags,
	srcStage, dstStage vk.PipelineStageFlags,
) {
	rec.disp.cmdPipelineBarrier(rec.cmdBuf, srcStage, dstStage, 0, nil, nil,
		[]vk.ImageMemoryBarrier{{
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectColor,
				LevelCount: 1,
				LayerCount: 1,
			},
		}})
}

func colorLayers() vk.ImageSubresourceLayers {
	return vk.ImageSubresourceLayers{AspectMask: vk.ImageAspectColor, LayerCount: 1}
}

func fullExtentBlit(width, height uint32) vk.ImageBlit {
	return vk.ImageBlit{
		SrcSubresource: colorLayers(),
		SrcOffsets:     [2]vk.Offset3D{{}, {X: int32(width), Y: int32(height), Z: 1}},
		DstSubresource: colorLayers(),
		DstOffsets:     [2]vk.Offset3D{{}, {X: int32(width), Y: int32(height), Z: 1}},
	}
}
