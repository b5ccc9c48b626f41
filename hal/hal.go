/*
 * Copyright 2025 The txgbe daemon authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package hal is the hardware abstraction boundary for txgbe family
// adapters. Register access and sensor calibration live behind the
// interfaces defined here, with one implementation per hardware
// generation.
package hal

import "errors"

// ErrNotSupported is returned by capability probes on hardware that does
// not carry the probed feature, e.g. a generation without a die sensor or
// a port other than the one the sensor is attached to.
var ErrNotSupported = errors.New("hal: not supported on this hardware")

// ThermalSensorData is the mutable sensor-state record shared between a
// generation implementation and everything reading from it. Temp is only
// meaningful right after a RefreshSensorData call; the two thresholds are
// programmed once by InitSensorThresh and static for the adapter's
// lifetime. All values are whole degrees Celsius.
type ThermalSensorData struct {
	Temp         int
	AlarmThresh  int
	DalarmThresh int
}

// Thermal is the per-generation thermal sensor capability.
type Thermal interface {
	// InitSensorThresh enables the sensor and programs its alarm
	// thresholds. A non-nil error means the adapter has no usable
	// thermal sensor and monitoring setup must be skipped.
	InitSensorThresh() error

	// RefreshSensorData re-reads the die temperature into the shared
	// record. Read failures leave the previous value in place.
	RefreshSensorData()

	// SensorData returns the shared in-place record. Callers must not
	// retain it past the owning adapter's detach.
	SensorData() *ThermalSensorData
}
