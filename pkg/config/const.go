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

package config

import (
	"time"
)

const (
	ConfigDir  = ".coincidence-counter"
	ConfigFile = "config"
	DBFile     = "runs.db"

	DefaultLogLevel = "info"

	DeviceKindSim       = "sim"
	DeviceKindReplay    = "replay"
	DeviceKindHydraHarp = "hydraharp"
	DefaultDeviceKind   = DeviceKindSim

	DefaultAcquisitionTimeMs = 200
	// in time tag units (ps)
	DefaultWindow      = 100000
	DefaultSyncChannel = 0
	DefaultPolicy      = "all-pairs"
	DefaultBurst       = 131072
	DefaultMinBackoff  = 100 * time.Microsecond
	DefaultMaxBackoff  = 10 * time.Millisecond

	DefaultAPIAddress = "127.0.0.1"
	DefaultAPIPort    = 8001

	DefaultSimSeed            = 1
	DefaultSimInputs          = 4
	DefaultSimSyncPeriodPs    = 1000000
	DefaultSimEfficiency      = 0.2
	DefaultSimPairProbability = 0.05
	DefaultSimDelayPs         = 20000
	DefaultSimJitterPs        = 500
	DefaultSimDarkRate        = 1000
	DefaultSimBurst           = 8192

	DefaultSyncDivider   = 1
	DefaultCFDLevel      = 50
	DefaultCFDZeroCross  = 10
	DefaultSyncOffsetPs  = -5000
	DefaultInputOffsetPs = 0
	DefaultSettleTimeMs  = 200
)
