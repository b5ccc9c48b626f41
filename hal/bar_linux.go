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

//go:build linux

package hal

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// BARRegisters serves RegisterIO from a PCI device's BAR0 resource file
// mapped into the process. Needs root or a udev rule granting the daemon
// access to the resource file.
type BARRegisters struct {
	f   *os.File
	mem []byte
}

// OpenBAR maps BAR0 of the device at the given PCI address, e.g.
// "0000:03:00.0".
func OpenBAR(pciAddr string) (*BARRegisters, error) {
	path := fmt.Sprintf("/sys/bus/pci/devices/%s/resource0", pciAddr)

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &BARRegisters{f: f, mem: mem}, nil
}

func (b *BARRegisters) Read32(offset uint32) uint32 {
	if int(offset)+4 > len(b.mem) {
		return 0
	}
	return binary.LittleEndian.Uint32(b.mem[offset : offset+4])
}

func (b *BARRegisters) Write32(offset uint32, value uint32) {
	if int(offset)+4 > len(b.mem) {
		return
	}
	binary.LittleEndian.PutUint32(b.mem[offset:offset+4], value)
}

func (b *BARRegisters) Close() error {
	if b.mem != nil {
		if err := unix.Munmap(b.mem); err != nil {
			b.f.Close()
			return fmt.Errorf("munmap: %w", err)
		}
		b.mem = nil
	}
	return b.f.Close()
}
