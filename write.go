// Copyright (c) 2012, Sean Treadway, SoundCloud Ltd.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package amqp

import "bufio"

// writer serializes frames onto a buffered transport. Callers are
// responsible for holding the connection's write lock around a sequence of
// WriteFrame calls that must land on the wire contiguously (a content
// publish's method+header+body chunks).
type writer struct {
	w *bufio.Writer
}

func (w *writer) WriteFrame(f frame) error {
	if err := f.write(w.w); err != nil {
		return err
	}
	return w.w.Flush()
}
