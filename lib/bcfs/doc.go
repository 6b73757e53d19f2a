// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bcfs reads and writes BCFS, the sector-based virtual
// filesystem found inside a decompressed Guitar Pro 6 container.
//
// The image is the four-byte magic "BCFS" followed by 4096-byte
// sectors, numbered from zero starting immediately after the magic.
// Sector 0 is reserved. A file is described by an entry sector:
//
//	0x00  int32  entry type (1 directory, 2 file)
//	0x04  [128]  NUL-terminated name
//	0x8C  int32  file size in bytes
//	0x94  int32… data sector indices, terminated by 0
//
// All integers are little-endian. The file content is the
// concatenation of its data sectors, truncated to the file size.
//
// [Unpack] treats the entry sectors as the authoritative index and
// rejects anything inconsistent with a [*MalformedContainerError]:
// sector indices outside the image, sizes the listed sectors cannot
// hold, unnamed or duplicate entries, and images with no files at
// all. [Pack] writes the same layout.
package bcfs
