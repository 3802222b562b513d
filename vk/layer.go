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

// LayerFunction discriminates the loader-threaded create-info nodes.
type LayerFunction int32

const (
	LayerLinkInfo   LayerFunction = 0
	LayerDeviceInfo LayerFunction = 1
)

// LayerInstanceLink is one element of the loader's instance layer chain.
// Each layer consumes the head and advances the chain before delegating
// creation, so the next layer down sees its own link first.
type LayerInstanceLink struct {
	Next                *LayerInstanceLink
	GetInstanceProcAddr PFNGetInstanceProcAddr
}

// LayerDeviceLink is one element of the loader's device layer chain.
type LayerDeviceLink struct {
	Next                *LayerDeviceLink
	GetInstanceProcAddr PFNGetInstanceProcAddr
	GetDeviceProcAddr   PFNGetDeviceProcAddr
}

// LayerInstanceCreateInfo rides the InstanceCreateInfo Next chain.
type LayerInstanceCreateInfo struct {
	Next     any
	Function LayerFunction
	Layer    *LayerInstanceLink
}

// LayerDeviceCreateInfo rides the DeviceCreateInfo Next chain.
type LayerDeviceCreateInfo struct {
	Next     any
	Function LayerFunction
	Layer    *LayerDeviceLink
}

// ChainNode is implemented by every structure that can appear on a
// create-info extension chain.
type ChainNode interface {
	NextNode() any
}

func (l *LayerInstanceCreateInfo) NextNode() any { return l.Next }
func (l *LayerDeviceCreateInfo) NextNode() any   { return l.Next }

// FindLayerInstanceLink walks an instance create-info chain for the
// loader's link node. Returns nil when the chain has no link or contains
// a node that cannot be walked.
func FindLayerInstanceLink(chain any) *LayerInstanceCreateInfo {
	for chain != nil {
		if info, ok := chain.(*LayerInstanceCreateInfo); ok {
			if info.Function == LayerLinkInfo {
				return info
			}
		}
		node, ok := chain.(ChainNode)
		if !ok {
			return nil
		}
		chain = node.NextNode()
	}
	return nil
}

// FindLayerDeviceLink walks a device create-info chain for the loader's
// link node.
func FindLayerDeviceLink(chain any) *LayerDeviceCreateInfo {
	for chain != nil {
		if info, ok := chain.(*LayerDeviceCreateInfo); ok {
			if info.Function == LayerLinkInfo {
				return info
			}
		}
		node, ok := chain.(ChainNode)
		if !ok {
			return nil
		}
		chain = node.NextNode()
	}
	return nil
}
