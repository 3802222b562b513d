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

import "strconv"

// Result is the driver status code. Values match the wire protocol.
type Result int32

const (
	Success    Result = 0
	NotReady   Result = 1
	Timeout    Result = 2
	Incomplete Result = 5

	SuboptimalKHR Result = 1000001003

	ErrorOutOfHostMemory        Result = -1
	ErrorOutOfDeviceMemory      Result = -2
	ErrorInitializationFailed   Result = -3
	ErrorDeviceLost             Result = -4
	ErrorLayerNotPresent        Result = -6
	ErrorExtensionNotPresent    Result = -7
	ErrorIncompatibleDriver     Result = -9
	ErrorSurfaceLostKHR         Result = -1000000000
	ErrorNativeWindowInUseKHR   Result = -1000000001
	ErrorOutOfDateKHR           Result = -1000001004
	ErrorFullScreenLostEXT      Result = -1000255000
	ErrorValidationFailedEXT    Result = -1000011001
	ErrorCompressionExhaustedEX Result = -1000338000
)

// Ok reports whether r is a non-error code. SuboptimalKHR counts as
// success: the present was delivered, the surface merely wants a
// recreate.
func (r Result) Ok() bool {
	return r >= 0
}

func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case NotReady:
		return "NotReady"
	case Timeout:
		return "Timeout"
	case Incomplete:
		return "Incomplete"
	case SuboptimalKHR:
		return "SuboptimalKHR"
	case ErrorOutOfHostMemory:
		return "ErrorOutOfHostMemory"
	case ErrorOutOfDeviceMemory:
		return "ErrorOutOfDeviceMemory"
	case ErrorInitializationFailed:
		return "ErrorInitializationFailed"
	case ErrorDeviceLost:
		return "ErrorDeviceLost"
	case ErrorLayerNotPresent:
		return "ErrorLayerNotPresent"
	case ErrorExtensionNotPresent:
		return "ErrorExtensionNotPresent"
	case ErrorIncompatibleDriver:
		return "ErrorIncompatibleDriver"
	case ErrorSurfaceLostKHR:
		return "ErrorSurfaceLostKHR"
	case ErrorNativeWindowInUseKHR:
		return "ErrorNativeWindowInUseKHR"
	case ErrorOutOfDateKHR:
		return "ErrorOutOfDateKHR"
	}
	return "Result(" + strconv.FormatInt(int64(r), 10) + ")"
}
