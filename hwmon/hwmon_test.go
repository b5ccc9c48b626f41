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

package hwmon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func staticAttr(name, value string) Attribute {
	return Attribute{
		Name: name,
		Mode: ModeReadOnly,
		Show: func() (string, error) { return value, nil },
	}
}

func Test_RegisterDevice(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()

	dev0, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)
	assert.Equal("hwmon0", dev0.Name())
	assert.Equal("0000:03:00.0", dev0.Owner())
	assert.Equal("txgbe", dev0.Label())

	dev1, err := host.RegisterDevice("0000:03:00.1", "txgbe")
	assert.Nil(err)
	assert.Equal("hwmon1", dev1.Name())

	got, ok := host.Device("hwmon0")
	assert.True(ok)
	assert.Equal(dev0, got)

	devs := host.Devices()
	assert.Len(devs, 2)
	assert.Equal("hwmon0", devs[0].Name())
	assert.Equal("hwmon1", devs[1].Name())

	_, err = host.RegisterDevice("", "txgbe")
	assert.ErrorIs(err, ErrBadName)
}

func Test_CreateAndReadFile(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()
	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)

	assert.Nil(dev.CreateFile(staticAttr("temp0_input", "45000\n")))

	out, err := dev.ReadFile("temp0_input")
	assert.Nil(err)
	assert.Equal("45000\n", out)

	err = dev.CreateFile(staticAttr("temp0_input", "46000\n"))
	assert.ErrorIs(err, ErrExists)

	_, err = dev.ReadFile("temp1_input")
	assert.ErrorIs(err, ErrNotFound)
}

func Test_CreateFile_Validation(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()
	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)

	assert.ErrorIs(dev.CreateFile(staticAttr("", "x")), ErrBadName)
	assert.ErrorIs(dev.CreateFile(staticAttr("bad/name", "x")), ErrBadName)
	assert.ErrorIs(dev.CreateFile(Attribute{Name: "temp0_input"}), ErrBadMode)

	writable := staticAttr("temp0_input", "x")
	writable.Mode = 0o644
	assert.ErrorIs(dev.CreateFile(writable), ErrBadMode)

	// zero mode defaults to read-only
	zero := staticAttr("temp0_input", "x")
	zero.Mode = 0
	assert.Nil(dev.CreateFile(zero))
}

func Test_RemoveFile(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()
	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)

	assert.Nil(dev.CreateFile(staticAttr("temp0_input", "45000\n")))

	dev.RemoveFile("temp0_input")
	_, err = dev.ReadFile("temp0_input")
	assert.ErrorIs(err, ErrNotFound)

	// removing again, or removing something never created, is fine
	dev.RemoveFile("temp0_input")
	dev.RemoveFile("temp9_input")
}

func Test_Attributes_Sorted(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()
	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)

	assert.Nil(dev.CreateFile(staticAttr("temp0_input", "45000\n")))
	assert.Nil(dev.CreateFile(staticAttr("temp0_dalarmthresh", "90000\n")))
	assert.Nil(dev.CreateFile(staticAttr("temp0_alarmthresh", "100000\n")))

	assert.Equal([]string{"temp0_alarmthresh", "temp0_dalarmthresh", "temp0_input"}, dev.Attributes())
}

func Test_Unregister(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()
	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)

	dev.Unregister()
	_, ok := host.Device("hwmon0")
	assert.False(ok)

	// unregistering twice is a no-op
	dev.Unregister()
	host.UnregisterDevice(nil)
	assert.Empty(host.Devices())
}

func Test_StaleFilesSurviveReRegistration(t *testing.T) {
	assert := assert.New(t)

	host := NewHost()

	dev, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)
	assert.Nil(dev.CreateFile(staticAttr("temp0_input", "45000\n")))

	// simulate an unclean teardown that never removed its files
	dev.Unregister()

	fresh, err := host.RegisterDevice("0000:03:00.0", "txgbe")
	assert.Nil(err)
	assert.Equal("hwmon1", fresh.Name())
	assert.Equal([]string{"temp0_input"}, fresh.Attributes())

	err = fresh.CreateFile(staticAttr("temp0_input", "50000\n"))
	assert.ErrorIs(err, ErrExists)

	fresh.RemoveFile("temp0_input")
	assert.Nil(fresh.CreateFile(staticAttr("temp0_input", "50000\n")))

	out, err := fresh.ReadFile("temp0_input")
	assert.Nil(err)
	assert.Equal("50000\n", out)
}
