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

// Package hwmon implements the in-process monitoring namespace the
// daemon exposes telemetry through, modeled on the kernel's hardware
// monitoring class: devices register under auto-assigned hwmon%d names
// and carry directories of named, read-only attribute files.
package hwmon

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrExists   = errors.New("hwmon: attribute file exists")
	ErrNotFound = errors.New("hwmon: attribute file not found")
	ErrBadName  = errors.New("hwmon: invalid name")
	ErrBadMode  = errors.New("hwmon: unsupported attribute mode")
)

// ModeReadOnly is the only permission class the namespace serves.
const ModeReadOnly fs.FileMode = 0o444

// Attribute is one named, read-only file in a device's directory. Show
// produces the complete file contents for a single read.
type Attribute struct {
	Name string
	Mode fs.FileMode
	Show func() (string, error)
}

// Host owns the namespace: live registrations plus the per-owner
// attribute directories the files actually live in. Directories outlive
// their registration, so files left behind by an unclean teardown stay
// in place and collide with the next registration of the same owner.
type Host struct {
	mu     sync.RWMutex
	nextID int
	dirs   map[string]*dir
	devs   map[string]*Device
}

func NewHost() *Host {
	return &Host{
		dirs: make(map[string]*dir),
		devs: make(map[string]*Device),
	}
}

// RegisterDevice adds a registration for owner (the adapter's identity,
// e.g. its PCI address) under the next free hwmon%d name. label is the
// chip label reported alongside it.
func (h *Host) RegisterDevice(owner, label string) (*Device, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: empty owner", ErrBadName)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	d := h.dirs[owner]
	if d == nil {
		d = &dir{attrs: make(map[string]Attribute)}
		h.dirs[owner] = d
	}

	dev := &Device{
		host:  h,
		id:    h.nextID,
		name:  fmt.Sprintf("hwmon%d", h.nextID),
		owner: owner,
		label: label,
		dir:   d,
	}
	h.nextID++
	h.devs[dev.name] = dev

	zap.L().Debug("registered hwmon device",
		zap.String("name", dev.name),
		zap.String("owner", owner),
		zap.String("label", label))

	return dev, nil
}

// UnregisterDevice drops a registration. The owner's attribute directory
// is left in place. Safe on nil and on already-unregistered devices.
func (h *Host) UnregisterDevice(dev *Device) {
	if dev == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.devs[dev.name] != dev {
		return
	}
	delete(h.devs, dev.name)

	zap.L().Debug("unregistered hwmon device",
		zap.String("name", dev.name),
		zap.String("owner", dev.owner))
}

// Device returns the live registration with the given hwmon name.
func (h *Host) Device(name string) (*Device, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dev, ok := h.devs[name]
	return dev, ok
}

// Devices returns the live registrations in registration order.
func (h *Host) Devices() []*Device {
	h.mu.RLock()
	defer h.mu.RUnlock()

	devs := make([]*Device, 0, len(h.devs))
	for _, dev := range h.devs {
		devs = append(devs, dev)
	}
	sort.Slice(devs, func(i, j int) bool { return devs[i].id < devs[j].id })
	return devs
}

// dir is the persistent attribute directory of one owner. All access is
// serialized, so a Show accessor is never invoked once its file removal
// has returned.
type dir struct {
	mu    sync.Mutex
	attrs map[string]Attribute
}

// Device is one live hwmon registration.
type Device struct {
	host  *Host
	id    int
	name  string
	owner string
	label string
	dir   *dir
}

func (d *Device) Name() string  { return d.name }
func (d *Device) Owner() string { return d.owner }
func (d *Device) Label() string { return d.label }

// CreateFile adds an attribute file to the device's directory.
func (d *Device) CreateFile(attr Attribute) error {
	if attr.Name == "" || strings.ContainsAny(attr.Name, "/ \t\n") {
		return fmt.Errorf("%w: %q", ErrBadName, attr.Name)
	}
	if attr.Show == nil {
		return fmt.Errorf("%w: %s has no show accessor", ErrBadMode, attr.Name)
	}
	if attr.Mode == 0 {
		attr.Mode = ModeReadOnly
	}
	if attr.Mode&^ModeReadOnly != 0 {
		return fmt.Errorf("%w: %s mode %04o", ErrBadMode, attr.Name, attr.Mode)
	}

	d.dir.mu.Lock()
	defer d.dir.mu.Unlock()

	if _, ok := d.dir.attrs[attr.Name]; ok {
		return fmt.Errorf("%w: %s/%s", ErrExists, d.name, attr.Name)
	}
	d.dir.attrs[attr.Name] = attr
	return nil
}

// RemoveFile removes the named attribute file. Removing a file that does
// not exist is a no-op.
func (d *Device) RemoveFile(name string) {
	d.dir.mu.Lock()
	defer d.dir.mu.Unlock()
	delete(d.dir.attrs, name)
}

// ReadFile runs the named attribute's show accessor and returns its
// output.
func (d *Device) ReadFile(name string) (string, error) {
	d.dir.mu.Lock()
	defer d.dir.mu.Unlock()

	attr, ok := d.dir.attrs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrNotFound, d.name, name)
	}
	return attr.Show()
}

// Attributes lists the device's attribute files in name order.
func (d *Device) Attributes() []string {
	d.dir.mu.Lock()
	defer d.dir.mu.Unlock()

	names := make([]string, 0, len(d.dir.attrs))
	for name := range d.dir.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister releases the registration, leaving the attribute directory
// and anything still in it behind for future registrations of the same
// owner.
func (d *Device) Unregister() {
	d.host.UnregisterDevice(d)
}
