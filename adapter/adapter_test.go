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

package adapter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Igorbunow/txgbe/hal/sapphire"
	"github.com/Igorbunow/txgbe/hwmon"
)

type fakeCloser struct {
	closed int
}

func (c *fakeCloser) Close() error {
	c.closed++
	return nil
}

func simParams(id, lanID int, tempDeg int) Params {
	return Params{
		ID:         id,
		PCIAddress: fmt.Sprintf("0000:03:00.%d", lanID),
		Model:      "SP1000A",
		LanID:      lanID,
		Thermal:    sapphire.New(sapphire.SimRegisters(tempDeg), lanID),
	}
}

func Test_AttachDetach(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	closer := &fakeCloser{}
	p := simParams(0, 0, 45)
	p.Closer = closer

	a := New(p, host, true)

	assert.Nil(a.Attach())
	assert.True(a.Monitoring())
	assert.Equal("hwmon0", a.HwmonName())

	dev, ok := host.Device("hwmon0")
	assert.True(ok)
	out, err := dev.ReadFile("temp0_input")
	assert.Nil(err)
	assert.Equal("45000\n", out)

	a.Detach()
	assert.False(a.Monitoring())
	assert.Equal("", a.HwmonName())
	assert.Empty(host.Devices())
	assert.Equal(1, closer.closed)

	// detaching again releases nothing twice
	a.Detach()
	assert.Equal(1, closer.closed)
}

func Test_Attach_SecondaryPort(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	a := New(simParams(1, 1, 45), host, true)

	// lan 1 has no sensor of its own; attach succeeds with monitoring idle
	assert.Nil(a.Attach())
	assert.False(a.Monitoring())
	assert.Empty(host.Devices())

	a.Detach()
}

func Test_Attach_MonitoringDisabled(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	a := New(simParams(0, 0, 45), host, false)

	assert.Nil(a.Attach())
	assert.False(a.Monitoring())
	assert.Empty(host.Devices())

	a.Detach()
}

func Test_Registry(t *testing.T) {
	assert := assert.New(t)

	host := hwmon.NewHost()
	reg := NewRegistry()

	a0 := New(simParams(0, 0, 45), host, true)
	a1 := New(simParams(1, 1, 45), host, true)
	reg.Add(a0)
	reg.Add(a1)

	assert.Nil(a0.Attach())
	assert.Nil(a1.Attach())

	list := reg.List()
	assert.Len(list, 2)
	assert.Equal(a0, list[0])
	assert.Equal(a1, list[1])

	reg.DetachAll()
	assert.False(a0.Monitoring())
	assert.Empty(host.Devices())
}
