// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the graphics device contract used by the
// immediate-mode renderer.
//
// The renderer never touches a native graphics API. It talks to a [Device],
// which hands out small opaque handles ([Buffer], [Texture], [Program], ...)
// for the objects it creates. The zero value of every handle type is the
// invalid handle: a failed creation returns it together with an error.
//
// Two implementations live in sub-packages:
//
//   - recorder: an in-memory device that records every call, used by tests
//     and tools that need to inspect draw issuance without a GPU.
//   - halgpu: a device on top of gogpu/wgpu's HAL that runs on real GPUs.
//
// A Device is driven from a single goroutine. Implementations are not
// required to be safe for concurrent use.
package device
