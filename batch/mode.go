// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package batch

import "fmt"

// Mode is the primitive mode of a draw call. The values match the classic
// GL enumerants so callers may pass them through unchanged.
type Mode int32

const (
	Lines     Mode = 0x0001
	Triangles Mode = 0x0004
	Quads     Mode = 0x0007
)

// GroupSize returns the number of vertices forming one primitive.
func (m Mode) GroupSize() int {
	switch m {
	case Lines:
		return 2
	case Triangles:
		return 3
	default:
		return 4
	}
}

func (m Mode) String() string {
	switch m {
	case Lines:
		return "Lines"
	case Triangles:
		return "Triangles"
	case Quads:
		return "Quads"
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	}
}

// alignment returns the padding that keeps the quad index math valid after
// a run of count vertices in mode m.
//
// The Lines formula differs in shape from the Triangles one; both are relied
// on by the index offsets computed at flush time.
func alignment(m Mode, count int) int {
	switch m {
	case Lines:
		if count < 4 {
			return count
		}
		return count % 4
	case Triangles:
		if count < 4 {
			return 1
		}
		return 4 - count%4
	default:
		return 0
	}
}
