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

package acquisition

import (
	"fmt"

	"github.com/HWQuantum/coincidence-counter/pkg/device"
)

// ErrFIFOOverflow aborts a run. Counts gathered before it are discarded.
type ErrFIFOOverflow struct {
	Flags device.Flags
}

func (e ErrFIFOOverflow) Error() string {
	return fmt.Sprintf("FIFO overflow, flags: %s", e.Flags)
}

// ErrAborted wraps the context error of a cancelled or timed out run
type ErrAborted struct {
	Err error
}

func (e ErrAborted) Error() string {
	return fmt.Sprintf("Acquisition aborted: %s", e.Err)
}

func (e ErrAborted) Unwrap() error {
	return e.Err
}
