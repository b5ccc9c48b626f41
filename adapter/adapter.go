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

// Package adapter manages the txgbe network adapters the daemon found,
// one Adapter per PCI function. Attaching an adapter brings its thermal
// sensor under monitoring; detaching tears the monitoring down and
// releases the register mapping.
package adapter

import (
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/hal"
	"github.com/Igorbunow/txgbe/hwmon"
	"github.com/Igorbunow/txgbe/thermal"
)

var log *zap.Logger

// Params carries everything needed to bring one PCI function under
// management.
type Params struct {
	ID         int
	PCIAddress string
	Model      string
	LanID      int
	Thermal    hal.Thermal
	// Closer releases the register mapping on detach. Nil for
	// simulated adapters.
	Closer io.Closer
}

// Adapter is one managed txgbe PCI function.
type Adapter struct {
	ID         int
	PCIAddress string
	Model      string
	LanID      int

	hw      hal.Thermal
	monitor *thermal.Monitor
	closer  io.Closer
}

// New builds an adapter from its discovery parameters. When thermal
// monitoring is disabled by configuration the adapter carries a nil
// monitor and Attach/Detach manage only the register mapping.
func New(p Params, host *hwmon.Host, thermalMonitoring bool) *Adapter {
	log = zap.L()

	a := &Adapter{
		ID:         p.ID,
		PCIAddress: p.PCIAddress,
		Model:      p.Model,
		LanID:      p.LanID,
		hw:         p.Thermal,
		closer:     p.Closer,
	}
	if thermalMonitoring {
		a.monitor = thermal.NewMonitor(p.Thermal, thermalHost(host), p.PCIAddress)
	}
	return a
}

func thermalHost(h *hwmon.Host) thermal.Host {
	return thermal.HostFunc(func(owner, label string) (thermal.Device, error) {
		return h.RegisterDevice(owner, label)
	})
}

// Attach brings the adapter's thermal sensor under monitoring. Hardware
// without a sensor attaches cleanly with monitoring idle; a monitoring
// failure is returned but leaves the adapter itself usable.
func (a *Adapter) Attach() error {
	return a.monitor.InitMonitoring()
}

// Detach tears down the adapter's monitoring surface and releases its
// register mapping. Safe to call more than once.
func (a *Adapter) Detach() {
	a.monitor.ExitMonitoring()

	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			log.Warn("failed to release register mapping",
				zap.String("pci_address", a.PCIAddress),
				zap.Error(err))
		}
		a.closer = nil
	}
}

// Thermal exposes the adapter's sensor HAL.
func (a *Adapter) Thermal() hal.Thermal {
	return a.hw
}

// Monitoring reports whether the adapter currently has live hwmon
// attribute files.
func (a *Adapter) Monitoring() bool {
	return a.monitor.Active()
}

// HwmonName returns the monitoring host's device name for this adapter
// while monitoring is live, and "" otherwise.
func (a *Adapter) HwmonName() string {
	return a.monitor.DeviceName()
}

// Registry is the daemon's shared view of the managed adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters []*Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends an adapter to the registry.
func (r *Registry) Add(a *Adapter) {
	r.mu.Lock()
	r.adapters = append(r.adapters, a)
	r.mu.Unlock()
}

// List returns the registered adapters in discovery order.
func (r *Registry) List() []*Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// DetachAll detaches every registered adapter, in discovery order.
func (r *Registry) DetachAll() {
	for _, a := range r.List() {
		a.Detach()
	}
}
