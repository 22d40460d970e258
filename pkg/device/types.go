/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package device

import (
	"strings"
)

const (
	// TTReadMax is the largest number of records one FIFO read may return
	TTReadMax = 131072
	// FIFOReadAlign is the granularity HHLib requires for maxRecords
	FIFOReadAlign = 128
	// MaxDevices is the number of device indices the library scans
	MaxDevices = 8

	SyncDivMin = 1
	SyncDivMax = 16
	// CFD levels in mV
	DiscrMin = 0
	DiscrMax = 1000
	ZeroCrossMin = 0
	ZeroCrossMax = 40
	// channel offsets in ps
	ChanOffsMin = -99999
	ChanOffsMax = 99999
	// acquisition time in ms
	AcqTMin = 1
	AcqTMax = 360000000
)

// RunStatus is the counter-timer (CTC) state of a measurement
type RunStatus int32

const (
	Running RunStatus = 0
	Ended   RunStatus = 1
)

func (s RunStatus) String() string {
	if s == Ended {
		return "ended"
	}
	return "running"
}

type MeasurementMode int32

const (
	ModeHist MeasurementMode = 0
	ModeT2   MeasurementMode = 2
	ModeT3   MeasurementMode = 3
	ModeCont MeasurementMode = 8
)

type MeasurementControl int32

const (
	MeasCtrlSingleShotCTC MeasurementControl = iota
	MeasCtrlC1Gated
	MeasCtrlC1StartCTCStop
	MeasCtrlC1StartC2Stop
	MeasCtrlContC1Gated
	MeasCtrlContC1StartCTCStop
	MeasCtrlContCTCRestart
)

type ReferenceSource int32

const (
	RefInternal ReferenceSource = 0
	RefExternal ReferenceSource = 1
)

type EdgeSelection int32

const (
	EdgeFalling EdgeSelection = 0
	EdgeRising  EdgeSelection = 1
)

// Flags is the status bit set returned by GetFlags
type Flags int32

const (
	FlagOverflow    Flags = 0x0001
	FlagFIFOFull    Flags = 0x0002
	FlagSyncLost    Flags = 0x0004
	FlagRefLost     Flags = 0x0008
	FlagSysError    Flags = 0x0010
	FlagActive      Flags = 0x0020
	FlagCntsDropped Flags = 0x0040
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagOverflow, "OVERFLOW"},
	{FlagFIFOFull, "FIFOFULL"},
	{FlagSyncLost, "SYNC_LOST"},
	{FlagRefLost, "REF_LOST"},
	{FlagSysError, "SYSERROR"},
	{FlagActive, "ACTIVE"},
	{FlagCntsDropped, "CNTS_DROPPED"},
}

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Warnings is the bit set returned by GetWarnings
type Warnings int32

const (
	WarningSyncRateZero      Warnings = 0x0001
	WarningSyncRateTooLow    Warnings = 0x0002
	WarningSyncRateTooHigh   Warnings = 0x0004
	WarningInputRateZero     Warnings = 0x0010
	WarningInputRateTooHigh  Warnings = 0x0040
	WarningInputRateRatio    Warnings = 0x0100
	WarningDividerGreaterOne Warnings = 0x0200
	WarningTimeSpanTooSmall  Warnings = 0x0400
	WarningOffsetUnnecessary Warnings = 0x0800
)

var warningNames = []struct {
	warning Warnings
	name    string
}{
	{WarningSyncRateZero, "SYNC_RATE_ZERO"},
	{WarningSyncRateTooLow, "SYNC_RATE_TOO_LOW"},
	{WarningSyncRateTooHigh, "SYNC_RATE_TOO_HIGH"},
	{WarningInputRateZero, "INPT_RATE_ZERO"},
	{WarningInputRateTooHigh, "INPT_RATE_TOO_HIGH"},
	{WarningInputRateRatio, "INPT_RATE_RATIO"},
	{WarningDividerGreaterOne, "DIVIDER_GREATER_ONE"},
	{WarningTimeSpanTooSmall, "TIME_SPAN_TOO_SMALL"},
	{WarningOffsetUnnecessary, "OFFSET_UNNECESSARY"},
}

// List returns the names of all warnings set
func (w Warnings) List() []string {
	var names []string
	for _, wn := range warningNames {
		if w&wn.warning != 0 {
			names = append(names, wn.name)
		}
	}
	return names
}
