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

// Package thermal publishes an adapter's thermal sensor as a set of
// hwmon attribute files. A Monitor owns the full lifecycle for one
// adapter: it programs the sensor thresholds through the HAL, registers
// a device with the monitoring host, creates the attribute files, and
// tears the whole surface down again on detach.
package thermal

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/hal"
	"github.com/Igorbunow/txgbe/hwmon"
)

var log *zap.Logger

// Label is the hwmon device label reported for every txgbe sensor.
const Label = "txgbe"

// Device is the slice of a monitoring-host registration a Monitor
// drives: attribute file management plus release of the registration
// itself. *hwmon.Device satisfies it.
type Device interface {
	CreateFile(attr hwmon.Attribute) error
	RemoveFile(name string)
	Unregister()
	Name() string
}

// Host registers per-adapter monitoring devices.
type Host interface {
	RegisterDevice(owner, label string) (Device, error)
}

// HostFunc adapts a registration function to the Host interface.
type HostFunc func(owner, label string) (Device, error)

// RegisterDevice calls f.
func (f HostFunc) RegisterDevice(owner, label string) (Device, error) {
	return f(owner, label)
}

// Monitor owns the hwmon surface of one adapter's thermal sensor.
//
// A freshly constructed Monitor is idle; InitMonitoring and
// ExitMonitoring move it between idle and active. Both are driven by
// the adapter attach/detach path and are never called concurrently.
// A nil *Monitor is a valid no-op monitor, used when thermal
// monitoring is disabled by configuration.
type Monitor struct {
	hw    hal.Thermal
	host  Host
	owner string

	dev   Device
	attrs []hwmon.Attribute
}

// NewMonitor builds a monitor for one adapter. owner identifies the
// adapter to the monitoring host, typically its PCI address.
func NewMonitor(hw hal.Thermal, host Host, owner string) *Monitor {
	log = zap.L()
	return &Monitor{
		hw:    hw,
		host:  host,
		owner: owner,
	}
}

// InitMonitoring programs the sensor thresholds and brings up the
// attribute files for the adapter. Hardware without a usable sensor is
// a clean no-op: the monitor stays idle and no error is returned. Any
// other failure unwinds everything that was registered and returns the
// aggregated error.
func (m *Monitor) InitMonitoring() error {
	if m == nil {
		return nil
	}

	if err := m.hw.InitSensorThresh(); err != nil {
		log.Info("no thermal sensor reported, monitoring disabled",
			zap.String("owner", m.owner),
			zap.Error(err))
		return nil
	}

	m.attrs = make([]hwmon.Attribute, 0, len(attrKinds))

	dev, err := m.host.RegisterDevice(m.owner, Label)
	if err != nil {
		m.ExitMonitoring()
		return fmt.Errorf("register hwmon device for %s: %w", m.owner, err)
	}
	m.dev = dev

	var errs error
	for _, kind := range attrKinds {
		errs = multierr.Append(errs, m.addAttr(kind))
	}
	if errs != nil {
		m.ExitMonitoring()
		return fmt.Errorf("create hwmon attributes for %s: %w", m.owner, errs)
	}

	log.Debug("thermal monitoring active",
		zap.String("owner", m.owner),
		zap.String("device", m.dev.Name()),
		zap.Int("attributes", len(m.attrs)))

	return nil
}

// addAttr builds one attribute descriptor and creates its file. A
// leftover file with the same name from an earlier unclean teardown is
// removed first so the create cannot collide with it. On success the
// descriptor joins the live set; on failure the error is reported and
// the caller carries on with the remaining kinds.
func (m *Monitor) addAttr(kind AttrKind) error {
	attr, err := m.buildAttr(kind)
	if err != nil {
		return err
	}

	m.dev.RemoveFile(attr.Name)

	if err := m.dev.CreateFile(attr); err != nil {
		log.Warn("failed to create hwmon attribute",
			zap.String("owner", m.owner),
			zap.String("attr", attr.Name),
			zap.Error(err))
		return fmt.Errorf("%s: %w", attr.Name, err)
	}

	m.attrs = append(m.attrs, attr)
	return nil
}

// ExitMonitoring removes every attribute file this monitor created and
// releases its hwmon device. It never fails and is safe to call any
// number of times, including on a monitor that was never initialized.
func (m *Monitor) ExitMonitoring() {
	if m == nil {
		return
	}

	for _, attr := range m.attrs {
		m.dev.RemoveFile(attr.Name)
	}
	m.attrs = nil

	if m.dev != nil {
		m.dev.Unregister()
		m.dev = nil
	}
}

// Active reports whether the monitor currently holds a live hwmon
// device registration.
func (m *Monitor) Active() bool {
	return m != nil && m.dev != nil
}

// DeviceName returns the monitoring host's name for this monitor's
// device ("hwmon0", ...) while active, and "" otherwise.
func (m *Monitor) DeviceName() string {
	if m == nil || m.dev == nil {
		return ""
	}
	return m.dev.Name()
}
