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

package log

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

type LogLevel int32

const (
	LogPrefix     = "[coincidence-counter] "
	ErrorPrefix   = "[error] "
	WarningPrefix = "[warn] "
	InfoPrefix    = "[info] "
	DebugPrefix   = "[debug] "
	HelpLevels    = "Must be one of: error, warning, info, debug."
)

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
)

var levels = [...]struct {
	name   string
	prefix string
}{
	ErrorLevel:   {"error", ErrorPrefix},
	WarningLevel: {"warning", WarningPrefix},
	InfoLevel:    {"info", InfoPrefix},
	DebugLevel:   {"debug", DebugPrefix},
}

func (l LogLevel) String() string {
	if l < ErrorLevel || int(l) >= len(levels) {
		return fmt.Sprintf("LogLevel(%d)", int32(l))
	}
	return levels[l].name
}

// the level is read from acquisition and HTTP goroutines
var (
	level  atomic.Int32
	std    = log.New(os.Stderr, LogPrefix, log.LstdFlags)
	output io.Writer = os.Stderr
)

func init() {
	level.Store(int32(InfoLevel))
}

func ParseLevel(strLevel string) (LogLevel, error) {
	for l, def := range levels {
		if def.name == strLevel {
			return LogLevel(l), nil
		}
	}
	return 0, errors.New("Wrong log level. " + HelpLevels)
}

func SetLevel(strLevel string) error {
	l, err := ParseLevel(strLevel)
	if err != nil {
		return err
	}
	level.Store(int32(l))
	return nil
}

// Init redirects the logger, it panics on an unknown level
func Init(out io.Writer, strLevel string) {
	std.SetOutput(out)
	output = out
	if err := SetLevel(strLevel); err != nil {
		panic(err)
	}
}

// Enabled reports whether messages of the given level are printed.
// Use it to skip building expensive debug arguments in hot loops.
func Enabled(l LogLevel) bool {
	return LogLevel(level.Load()) >= l
}

// Writer returns the destination of the logger, e.g. for HTTP access logs.
func Writer() io.Writer {
	return output
}

func logf(l LogLevel, format string, v []interface{}) {
	if !Enabled(l) {
		return
	}
	std.Println(levels[l].prefix + fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	logf(ErrorLevel, format, v)
}

func Warning(format string, v ...interface{}) {
	logf(WarningLevel, format, v)
}

func Info(format string, v ...interface{}) {
	logf(InfoLevel, format, v)
}

func Debug(format string, v ...interface{}) {
	logf(DebugLevel, format, v)
}
