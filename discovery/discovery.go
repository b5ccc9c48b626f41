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

// Package discovery enumerates the txgbe adapters the daemon should
// manage. Adapters come from a PCI bus scan, from a static YAML
// inventory, or from a simulated backend for development machines.
package discovery

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Igorbunow/txgbe/adapter"
	"github.com/Igorbunow/txgbe/hal"
	"github.com/Igorbunow/txgbe/hal/sapphire"
)

var log *zap.Logger

// vendorWangxun is the PCI vendor ID of WangXun Technology.
const vendorWangxun = "8088"

// sapphireModels maps the PCI device IDs of first-generation txgbe
// silicon to their marketing names.
var sapphireModels = map[string]string{
	"1001": "SP1000",
	"2001": "WX1820",
}

// matchSapphire reports whether a PCI vendor/device pair is a supported
// txgbe function, and the model name if so.
func matchSapphire(vendorID, productID string) (string, bool) {
	if vendorID != vendorWangxun {
		return "", false
	}
	model, ok := sapphireModels[productID]
	return model, ok
}

// lanIDFromAddress derives the physical port from the PCI function
// number, e.g. "0000:03:00.1" is lan 1.
func lanIDFromAddress(addr string) (int, error) {
	dot := strings.LastIndexByte(addr, '.')
	if dot < 0 || dot == len(addr)-1 {
		return 0, errors.Errorf("malformed PCI address %q", addr)
	}
	fn, err := strconv.Atoi(addr[dot+1:])
	if err != nil {
		return 0, errors.Wrapf(err, "malformed PCI address %q", addr)
	}
	return fn, nil
}

// captureStderr runs funcToExecute with os.Stderr redirected into a
// pipe and returns whatever was written to it.
func captureStderr(funcToExecute func()) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	defaultStderrWriter := os.Stderr
	os.Stderr = w

	defer func() {
		os.Stderr = defaultStderrWriter
	}()

	funcToExecute()
	err = w.Close()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ScanPCI walks the PCI bus and returns adapter parameters for every
// txgbe function whose registers could be mapped. Functions that fail
// to map are logged and skipped so one busy BAR does not hide the rest
// of the bus.
func ScanPCI() ([]adapter.Params, error) {
	log = zap.L()

	var ghwErr error
	var devices []*ghw.PCIDevice

	// ghw writes some failures straight to stderr instead of returning
	// them, so collect that output and surface it through the logger.
	stderrOutput, err := captureStderr(func() {
		var pciInfo *ghw.PCIInfo
		if pciInfo, ghwErr = ghw.PCI(); ghwErr == nil {
			devices = pciInfo.ListDevices()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not capture stderr while scanning the PCI bus")
	}
	if ghwErr != nil {
		return nil, errors.Wrap(ghwErr, "could not scan the PCI bus")
	}
	if len(stderrOutput) > 0 {
		log.Warn("PCI scan produced error output",
			zap.String("output", strings.TrimSpace(stderrOutput)))
	}

	var out []adapter.Params
	for _, d := range devices {
		model, ok := matchSapphire(d.Vendor.ID, d.Product.ID)
		if !ok {
			continue
		}

		lanID, err := lanIDFromAddress(d.Address)
		if err != nil {
			log.Warn("skipping txgbe function with unparseable address",
				zap.String("pci_address", d.Address),
				zap.Error(err))
			continue
		}

		bar, err := hal.OpenBAR(d.Address)
		if err != nil {
			log.Warn("could not map txgbe registers, skipping function",
				zap.String("pci_address", d.Address),
				zap.String("model", model),
				zap.Error(err))
			continue
		}

		out = append(out, adapter.Params{
			ID:         len(out),
			PCIAddress: d.Address,
			Model:      model,
			LanID:      lanID,
			Thermal:    sapphire.New(bar, lanID),
			Closer:     bar,
		})

		log.Info("found txgbe adapter",
			zap.String("pci_address", d.Address),
			zap.String("model", model),
			zap.Int("lan_id", lanID))
	}

	return out, nil
}
