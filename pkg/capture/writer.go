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

// Package capture tees raw FIFO bursts to a file that the replay device can read back.
package capture

import (
	"bufio"
	"os"
	"time"

	"github.com/google/gopacket"

	"github.com/HWQuantum/coincidence-counter/pkg/layers"
	"github.com/HWQuantum/coincidence-counter/pkg/log"
)

type Writer struct {
	file   *os.File
	w      *bufio.Writer
	buf    gopacket.SerializeBuffer
	bursts uint64
	words  uint64
	now    func() time.Time
}

func NewWriter(filename string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		log.Error("Error while creating file: %s", filename)
		return nil, err
	}
	return &Writer{
		file: file,
		w:    bufio.NewWriter(file),
		buf:  gopacket.NewSerializeBuffer(),
		now:  time.Now,
	}, nil
}

// WriteBurst appends one FIFO read as a burst frame
func (w *Writer) WriteBurst(words []uint32) error {
	bl := &layers.BurstLayer{
		BurstHeader: layers.BurstHeader{Timestamp: uint64(w.now().UnixMilli())},
		Words:       words,
	}
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(w.buf, opts, bl); err != nil {
		return err
	}
	if _, err := w.w.Write(w.buf.Bytes()); err != nil {
		return err
	}
	w.bursts++
	w.words += uint64(len(words))
	return nil
}

func (w *Writer) Bursts() uint64 {
	return w.bursts
}

func (w *Writer) Words() uint64 {
	return w.words
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	log.Debug("Capture %s closed: %d bursts, %d words", w.file.Name(), w.bursts, w.words)
	return w.file.Close()
}
