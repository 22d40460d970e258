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
	"fmt"
)

// ErrorKind is a HydraHarp library error code. Every driver call returning
// a non-zero code is reported as one of these.
type ErrorKind int32

const (
	ErrDeviceOpenFail          ErrorKind = -1
	ErrDeviceBusy              ErrorKind = -2
	ErrDeviceHEventFail        ErrorKind = -3
	ErrDeviceCallBSetFail      ErrorKind = -4
	ErrDeviceBarMapFail        ErrorKind = -5
	ErrDeviceCloseFail         ErrorKind = -6
	ErrDeviceResetFail         ErrorKind = -7
	ErrDeviceGetVersionFail    ErrorKind = -8
	ErrDeviceVersionMismatch   ErrorKind = -9
	ErrDeviceNotOpen           ErrorKind = -10
	ErrInstanceRunning         ErrorKind = -16
	ErrInvalidArgument         ErrorKind = -17
	ErrInvalidMode             ErrorKind = -18
	ErrInvalidOption           ErrorKind = -19
	ErrInvalidMemory           ErrorKind = -20
	ErrInvalidRData            ErrorKind = -21
	ErrNotInitialized          ErrorKind = -22
	ErrNotCalibrated           ErrorKind = -23
	ErrDMAFail                 ErrorKind = -24
	ErrXTDeviceFail            ErrorKind = -25
	ErrFPGAConfFail            ErrorKind = -26
	ErrIFConfFail              ErrorKind = -27
	ErrFIFOResetFail           ErrorKind = -28
	ErrUSBGetDriverVerFail     ErrorKind = -32
	ErrUSBDriverVerMismatch    ErrorKind = -33
	ErrUSBGetIFInfoFail        ErrorKind = -34
	ErrUSBHiSpeedFail          ErrorKind = -35
	ErrUSBVCmdFail             ErrorKind = -36
	ErrUSBBulkRdFail           ErrorKind = -37
	ErrUSBResetFail            ErrorKind = -38
	ErrLaneUpTimeout           ErrorKind = -40
	ErrDoneAllTimeout          ErrorKind = -41
	ErrModAckTimeout           ErrorKind = -42
	ErrMActiveTimeout          ErrorKind = -43
	ErrMemClearFail            ErrorKind = -44
	ErrMemTestFail             ErrorKind = -45
	ErrCalibFail               ErrorKind = -46
	ErrRefSelFail              ErrorKind = -47
	ErrStatusFail              ErrorKind = -48
	ErrModNumFail              ErrorKind = -49
	ErrDigMuxFail              ErrorKind = -50
	ErrModMuxFail              ErrorKind = -51
	ErrModFwPCBMismatch        ErrorKind = -52
	ErrModFwVerMismatch        ErrorKind = -53
	ErrModPropertyMismatch     ErrorKind = -54
	ErrInvalidMagic            ErrorKind = -55
	ErrInvalidLength           ErrorKind = -56
	ErrRateFail                ErrorKind = -57
	ErrModFwVerTooLow          ErrorKind = -58
	ErrModFwVerTooHigh         ErrorKind = -59
	ErrEEPROMF01               ErrorKind = -64
	ErrEEPROMF02               ErrorKind = -65
	ErrEEPROMF03               ErrorKind = -66
	ErrEEPROMF04               ErrorKind = -67
	ErrEEPROMF05               ErrorKind = -68
	ErrEEPROMF06               ErrorKind = -69
	ErrEEPROMF07               ErrorKind = -70
	ErrEEPROMF08               ErrorKind = -71
	ErrEEPROMF09               ErrorKind = -72
	ErrEEPROMF10               ErrorKind = -73
	ErrEEPROMF11               ErrorKind = -74
	ErrUnknown                 ErrorKind = -75
	ErrHistogramLengthNotKnown ErrorKind = -76
)

var errorNames = map[ErrorKind]string{
	ErrDeviceOpenFail:          "DEVICE_OPEN_FAIL",
	ErrDeviceBusy:              "DEVICE_BUSY",
	ErrDeviceHEventFail:        "DEVICE_HEVENT_FAIL",
	ErrDeviceCallBSetFail:      "DEVICE_CALLBSET_FAIL",
	ErrDeviceBarMapFail:        "DEVICE_BARMAP_FAIL",
	ErrDeviceCloseFail:         "DEVICE_CLOSE_FAIL",
	ErrDeviceResetFail:         "DEVICE_RESET_FAIL",
	ErrDeviceGetVersionFail:    "DEVICE_GETVERSION_FAIL",
	ErrDeviceVersionMismatch:   "DEVICE_VERSION_MISMATCH",
	ErrDeviceNotOpen:           "DEVICE_NOT_OPEN",
	ErrInstanceRunning:         "INSTANCE_RUNNING",
	ErrInvalidArgument:         "INVALID_ARGUMENT",
	ErrInvalidMode:             "INVALID_MODE",
	ErrInvalidOption:           "INVALID_OPTION",
	ErrInvalidMemory:           "INVALID_MEMORY",
	ErrInvalidRData:            "INVALID_RDATA",
	ErrNotInitialized:          "NOT_INITIALIZED",
	ErrNotCalibrated:           "NOT_CALIBRATED",
	ErrDMAFail:                 "DMA_FAIL",
	ErrXTDeviceFail:            "XTDEVICE_FAIL",
	ErrFPGAConfFail:            "FPGACONF_FAIL",
	ErrIFConfFail:              "IFCONF_FAIL",
	ErrFIFOResetFail:           "FIFORESET_FAIL",
	ErrUSBGetDriverVerFail:     "USB_GETDRIVERVER_FAIL",
	ErrUSBDriverVerMismatch:    "USB_DRIVERVER_MISMATCH",
	ErrUSBGetIFInfoFail:        "USB_GETIFINFO_FAIL",
	ErrUSBHiSpeedFail:          "USB_HISPEED_FAIL",
	ErrUSBVCmdFail:             "USB_VCMD_FAIL",
	ErrUSBBulkRdFail:           "USB_BULKRD_FAIL",
	ErrUSBResetFail:            "USB_RESET_FAIL",
	ErrLaneUpTimeout:           "LANEUP_TIMEOUT",
	ErrDoneAllTimeout:          "DONEALL_TIMEOUT",
	ErrModAckTimeout:           "MODACK_TIMEOUT",
	ErrMActiveTimeout:          "MACTIVE_TIMEOUT",
	ErrMemClearFail:            "MEMCLEAR_FAIL",
	ErrMemTestFail:             "MEMTEST_FAIL",
	ErrCalibFail:               "CALIB_FAIL",
	ErrRefSelFail:              "REFSEL_FAIL",
	ErrStatusFail:              "STATUS_FAIL",
	ErrModNumFail:              "MODNUM_FAIL",
	ErrDigMuxFail:              "DIGMUX_FAIL",
	ErrModMuxFail:              "MODMUX_FAIL",
	ErrModFwPCBMismatch:        "MODFWPCB_MISMATCH",
	ErrModFwVerMismatch:        "MODFWVER_MISMATCH",
	ErrModPropertyMismatch:     "MODPROPERTY_MISMATCH",
	ErrInvalidMagic:            "INVALID_MAGIC",
	ErrInvalidLength:           "INVALID_LENGTH",
	ErrRateFail:                "RATE_FAIL",
	ErrModFwVerTooLow:          "MODFWVER_TOO_LOW",
	ErrModFwVerTooHigh:         "MODFWVER_TOO_HIGH",
	ErrEEPROMF01:               "EEPROM_F01",
	ErrEEPROMF02:               "EEPROM_F02",
	ErrEEPROMF03:               "EEPROM_F03",
	ErrEEPROMF04:               "EEPROM_F04",
	ErrEEPROMF05:               "EEPROM_F05",
	ErrEEPROMF06:               "EEPROM_F06",
	ErrEEPROMF07:               "EEPROM_F07",
	ErrEEPROMF08:               "EEPROM_F08",
	ErrEEPROMF09:               "EEPROM_F09",
	ErrEEPROMF10:               "EEPROM_F10",
	ErrEEPROMF11:               "EEPROM_F11",
	ErrUnknown:                 "UNKNOWN_ERROR",
	ErrHistogramLengthNotKnown: "HISTOGRAM_LENGTH_NOT_KNOWN",
}

func (e ErrorKind) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int32(e))
}

func (e ErrorKind) Error() string {
	return fmt.Sprintf("hydraharp error %d: %s", int32(e), e.String())
}

// FromCode maps a driver return code to an error. Zero is success,
// codes outside the known set become ErrUnknown.
func FromCode(code int32) error {
	if code == 0 {
		return nil
	}
	e := ErrorKind(code)
	if _, ok := errorNames[e]; !ok {
		return ErrUnknown
	}
	return e
}
