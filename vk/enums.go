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

import (
	"strconv"
	"strings"
)

type Format uint32

const (
	FormatUndefined      Format = 0
	FormatR8G8B8A8Unorm  Format = 37
	FormatR8G8B8A8Srgb   Format = 43
	FormatB8G8R8A8Unorm  Format = 44
	FormatB8G8R8A8Srgb   Format = 50
	FormatA2B10G10R10    Format = 64
	FormatR16G16B16A16F  Format = 97
	FormatR32G32B32A32F  Format = 109
	FormatD32Sfloat      Format = 126
	FormatD24UnormS8Uint Format = 129
)

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "Undefined"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8Unorm"
	case FormatR8G8B8A8Srgb:
		return "R8G8B8A8Srgb"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8Unorm"
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8Srgb"
	case FormatA2B10G10R10:
		return "A2B10G10R10UnormPack32"
	case FormatR16G16B16A16F:
		return "R16G16B16A16Sfloat"
	case FormatR32G32B32A32F:
		return "R32G32B32A32Sfloat"
	case FormatD32Sfloat:
		return "D32Sfloat"
	case FormatD24UnormS8Uint:
		return "D24UnormS8Uint"
	}
	return "Format(" + strconv.FormatUint(uint64(f), 10) + ")"
}

type ImageLayout uint32

const (
	ImageLayoutUndefined          ImageLayout = 0
	ImageLayoutGeneral            ImageLayout = 1
	ImageLayoutColorAttachment    ImageLayout = 2
	ImageLayoutShaderReadOnly     ImageLayout = 5
	ImageLayoutTransferSrcOptimal ImageLayout = 6
	ImageLayoutTransferDstOptimal ImageLayout = 7
	ImageLayoutPresentSrcKHR      ImageLayout = 1000001002
)

func (l ImageLayout) String() string {
	switch l {
	case ImageLayoutUndefined:
		return "Undefined"
	case ImageLayoutGeneral:
		return "General"
	case ImageLayoutColorAttachment:
		return "ColorAttachment"
	case ImageLayoutShaderReadOnly:
		return "ShaderReadOnly"
	case ImageLayoutTransferSrcOptimal:
		return "TransferSrcOptimal"
	case ImageLayoutTransferDstOptimal:
		return "TransferDstOptimal"
	case ImageLayoutPresentSrcKHR:
		return "PresentSrcKHR"
	}
	return "ImageLayout(" + strconv.FormatUint(uint64(l), 10) + ")"
}

type AccessFlags uint32

const (
	AccessNone          AccessFlags = 0
	AccessTransferRead  AccessFlags = 0x0800
	AccessTransferWrite AccessFlags = 0x1000
	AccessMemoryRead    AccessFlags = 0x8000
	AccessMemoryWrite   AccessFlags = 0x10000
)

func (a AccessFlags) HasBits(want AccessFlags) bool {
	return (a & want) == want
}

type PipelineStageFlags uint32

const (
	PipelineStageTopOfPipe    PipelineStageFlags = 0x0001
	PipelineStageTransfer     PipelineStageFlags = 0x1000
	PipelineStageBottomOfPipe PipelineStageFlags = 0x2000
	PipelineStageAllCommands  PipelineStageFlags = 0x10000
)

type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc     ImageUsageFlags = 0x01
	ImageUsageTransferDst     ImageUsageFlags = 0x02
	ImageUsageSampled         ImageUsageFlags = 0x04
	ImageUsageStorage         ImageUsageFlags = 0x08
	ImageUsageColorAttachment ImageUsageFlags = 0x10
)

func (u ImageUsageFlags) HasBits(want ImageUsageFlags) bool {
	return (u & want) == want
}

func (u ImageUsageFlags) String() string {
	str := ""
	if u.HasBits(ImageUsageTransferSrc) {
		str += "TransferSrc|"
	}
	if u.HasBits(ImageUsageTransferDst) {
		str += "TransferDst|"
	}
	if u.HasBits(ImageUsageSampled) {
		str += "Sampled|"
	}
	if u.HasBits(ImageUsageStorage) {
		str += "Storage|"
	}
	if u.HasBits(ImageUsageColorAttachment) {
		str += "ColorAttachment|"
	}
	return strings.TrimSuffix(str, "|")
}

type ImageAspectFlags uint32

const (
	ImageAspectColor   ImageAspectFlags = 0x1
	ImageAspectDepth   ImageAspectFlags = 0x2
	ImageAspectStencil ImageAspectFlags = 0x4
)

type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal  MemoryPropertyFlags = 0x01
	MemoryPropertyHostVisible  MemoryPropertyFlags = 0x02
	MemoryPropertyHostCoherent MemoryPropertyFlags = 0x04
	MemoryPropertyHostCached   MemoryPropertyFlags = 0x08
)

func (m MemoryPropertyFlags) HasBits(want MemoryPropertyFlags) bool {
	return (m & want) == want
}

type Filter uint32

const (
	FilterNearest Filter = 0
	FilterLinear  Filter = 1
)

type SharingMode uint32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

type ImageTiling uint32

const (
	ImageTilingOptimal ImageTiling = 0
	ImageTilingLinear  ImageTiling = 1
)

type ImageType uint32

const (
	ImageType1D ImageType = 0
	ImageType2D ImageType = 1
	ImageType3D ImageType = 2
)

type SampleCountFlags uint32

const SampleCount1 SampleCountFlags = 0x1

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

func (q QueueFlags) HasBits(want QueueFlags) bool {
	return (q & want) == want
}

type CommandPoolCreateFlags uint32

const (
	CommandPoolCreateTransient          CommandPoolCreateFlags = 0x1
	CommandPoolCreateResetCommandBuffer CommandPoolCreateFlags = 0x2
)

type CommandBufferLevel uint32

const (
	CommandBufferLevelPrimary   CommandBufferLevel = 0
	CommandBufferLevelSecondary CommandBufferLevel = 1
)

type CommandBufferUsageFlags uint32

const CommandBufferUsageOneTimeSubmit CommandBufferUsageFlags = 0x1

type CommandBufferResetFlags uint32

const CommandBufferResetReleaseResources CommandBufferResetFlags = 0x1

type FenceCreateFlags uint32

const FenceCreateSignaled FenceCreateFlags = 0x1

type DependencyFlags uint32

type PresentModeKHR uint32

const (
	PresentModeImmediate   PresentModeKHR = 0
	PresentModeMailbox     PresentModeKHR = 1
	PresentModeFIFO        PresentModeKHR = 2
	PresentModeFIFORelaxed PresentModeKHR = 3
)

type ColorSpaceKHR uint32

const ColorSpaceSRGBNonlinear ColorSpaceKHR = 0

type CompositeAlphaFlagsKHR uint32

const CompositeAlphaOpaque CompositeAlphaFlagsKHR = 0x1

type SurfaceTransformFlagsKHR uint32

const SurfaceTransformIdentity SurfaceTransformFlagsKHR = 0x1
