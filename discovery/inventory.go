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

package discovery

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/hal"
	"github.com/Igorbunow/txgbe/hal/hostsensor"
	"github.com/Igorbunow/txgbe/hal/sapphire"
)

// Source selects how an inventory entry's sensor is backed.
type Source string

const (
	// SourcePCI maps the function's registers from its PCI BAR.
	SourcePCI Source = "pci"
	// SourceSim backs the entry with an in-memory register file.
	SourceSim Source = "sim"
	// SourceHost reads the machine's own sensors via the OS.
	SourceHost Source = "host"
)

// defaultSimTemp is the reading simulated entries report unless the
// inventory says otherwise.
const defaultSimTemp = 45

// Entry is one adapter in a static inventory file.
type Entry struct {
	PCIAddress string `yaml:"pci_address"`
	Model      string `yaml:"model"`
	LanID      *int   `yaml:"lan_id"`
	Source     Source `yaml:"source"`
	SimTemp    *int   `yaml:"sim_temp"`
	SensorKey  string `yaml:"sensor_key"`
}

// Inventory is the static adapter list loaded from YAML, the
// non-privileged alternative to a PCI bus scan.
type Inventory struct {
	Adapters []Entry `yaml:"adapters"`
}

// LoadInventory reads and validates a YAML inventory file.
func LoadInventory(path string) (*Inventory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read inventory file")
	}

	var inv Inventory
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, errors.Wrap(err, "could not parse inventory file")
	}

	seen := map[string]bool{}
	for i, e := range inv.Adapters {
		if e.PCIAddress == "" {
			return nil, errors.Errorf("inventory entry %d: pci_address is required", i)
		}
		if seen[e.PCIAddress] {
			return nil, errors.Errorf("inventory entry %d: duplicate pci_address %q", i, e.PCIAddress)
		}
		seen[e.PCIAddress] = true

		switch e.Source {
		case "", SourcePCI, SourceSim, SourceHost:
		default:
			return nil, errors.Errorf("inventory entry %d: unknown source %q", i, e.Source)
		}
	}

	return &inv, nil
}

// FromInventory turns a static inventory into adapter parameters.
// Unlike a bus scan, a function listed here that cannot be brought up
// is an error rather than a skip.
func FromInventory(inv *Inventory) ([]adapter.Params, error) {
	out := make([]adapter.Params, 0, len(inv.Adapters))
	for _, e := range inv.Adapters {
		p, err := paramsForEntry(e, len(out))
		if err != nil {
			return nil, errors.Wrapf(err, "inventory entry %s", e.PCIAddress)
		}
		out = append(out, p)
	}
	return out, nil
}

func paramsForEntry(e Entry, id int) (adapter.Params, error) {
	p := adapter.Params{
		ID:         id,
		PCIAddress: e.PCIAddress,
		Model:      e.Model,
	}

	source := e.Source
	if source == "" {
		source = SourcePCI
	}

	switch source {
	case SourcePCI:
		lanID, err := entryLanID(e)
		if err != nil {
			return adapter.Params{}, err
		}
		bar, err := hal.OpenBAR(e.PCIAddress)
		if err != nil {
			return adapter.Params{}, errors.Wrap(err, "could not map registers")
		}
		if p.Model == "" {
			p.Model = "SP1000"
		}
		p.LanID = lanID
		p.Thermal = sapphire.New(bar, lanID)
		p.Closer = bar

	case SourceSim:
		temp := defaultSimTemp
		if e.SimTemp != nil {
			temp = *e.SimTemp
		}
		if p.Model == "" {
			p.Model = "SP1000-SIM"
		}
		if e.LanID != nil {
			p.LanID = *e.LanID
		}
		p.Thermal = sapphire.New(sapphire.SimRegisters(temp), p.LanID)

	case SourceHost:
		if p.Model == "" {
			p.Model = "host-sensor"
		}
		p.Thermal = hostsensor.New(e.SensorKey)
	}

	return p, nil
}

// entryLanID resolves an entry's physical port, preferring an explicit
// lan_id over the PCI function number.
func entryLanID(e Entry) (int, error) {
	if e.LanID != nil {
		return *e.LanID, nil
	}
	return lanIDFromAddress(e.PCIAddress)
}

// Sim fabricates n simulated adapters for development machines with no
// txgbe hardware at all.
func Sim(n int) []adapter.Params {
	out := make([]adapter.Params, 0, n)
	for i := 0; i < n; i++ {
		temp := defaultSimTemp + i
		out = append(out, adapter.Params{
			ID:         i,
			PCIAddress: fmt.Sprintf("sim%d", i),
			Model:      "SP1000-SIM",
			LanID:      0,
			Thermal:    sapphire.New(sapphire.SimRegisters(temp), 0),
		})
	}
	return out
}
