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
	"encoding/json"
	"os"

	"goarrg.com/debug"

	"github.com/framegen/framegen/vk"
)

// Manifest is the on-disk JSON the host loader reads to discover the
// layer. Every intercepted entry point must appear in Functions or the
// loader will not route it here.
type Manifest struct {
	FileFormatVersion string        `json:"file_format_version"`
	Layer             ManifestLayer `json:"layer"`
}

type ManifestLayer struct {
	Name                  string            `json:"name"`
	Type                  string            `json:"type"`
	LibraryPath           string            `json:"library_path"`
	APIVersion            string            `json:"api_version"`
	ImplementationVersion string            `json:"implementation_version"`
	Description           string            `json:"description"`
	Functions             map[string]string `json:"functions"`
}

// interceptedFunctions maps protocol names to exported symbol names.
var interceptedFunctions = map[string]string{
	"vkCreateInstance":                       "framegen_CreateInstance",
	"vkDestroyInstance":                      "framegen_DestroyInstance",
	"vkCreateDevice":                         "framegen_CreateDevice",
	"vkDestroyDevice":                        "framegen_DestroyDevice",
	"vkCreateSwapchainKHR":                   "framegen_CreateSwapchainKHR",
	"vkDestroySwapchainKHR":                  "framegen_DestroySwapchainKHR",
	"vkQueuePresentKHR":                      "framegen_QueuePresentKHR",
	"vkGetInstanceProcAddr":                  "framegen_GetInstanceProcAddr",
	"vkGetDeviceProcAddr":                    "framegen_GetDeviceProcAddr",
	"vkEnumerateInstanceLayerProperties":     "framegen_EnumerateInstanceLayerProperties",
	"vkEnumerateDeviceLayerProperties":       "framegen_EnumerateDeviceLayerProperties",
	"vkEnumerateInstanceExtensionProperties": "framegen_EnumerateInstanceExtensionProperties",
	"vkEnumerateDeviceExtensionProperties":   "framegen_EnumerateDeviceExtensionProperties",
}

// NewManifest builds the loader manifest for a shared object at
// libraryPath.
func NewManifest(libraryPath string) Manifest {
	functions := make(map[string]string, len(interceptedFunctions))
	for name, symbol := range interceptedFunctions {
		functions[name] = symbol
	}
	return Manifest{
		FileFormatVersion: "1.1.2",
		Layer: ManifestLayer{
			Name:                  LayerName,
			Type:                  "GLOBAL",
			LibraryPath:           libraryPath,
			APIVersion:            vk.VersionString(LayerSpecVersion),
			ImplementationVersion: "1",
			Description:           LayerDescription,
			Functions:             functions,
		},
	}
}

// MarshalIndentJSON renders the manifest the way loaders expect to find
// it on disk.
func (m Manifest) MarshalIndentJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, debug.ErrorWrapf(err, "failed to marshal manifest")
	}
	return data, nil
}

// WriteFile marshals the manifest where the host loader looks for it.
func (m Manifest) WriteFile(path string) error {
	data, err := m.MarshalIndentJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return debug.ErrorWrapf(err, "failed to write manifest")
	}
	return nil
}
