// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmlrepair fixes the recurring corruption found in XML entries
// extracted from Guitar Pro 6 containers before the text reaches an XML
// parser.
//
// The repairs are a fixed, ordered table of [Rule] values. Each rule
// makes one forward pass over the text, so a rule can never loop on its
// own output, and new rules are appended to the end of the table. The
// pass is pattern matching, not parsing: a rule that finds nothing is a
// no-op, and [Repair] never fails. Structural problems the rules do not
// cover surface later, in the XML parser.
//
// Input that is not valid UTF-8 is decoded as ISO-8859-1, which older
// Guitar Pro versions wrote, and the result is always UTF-8.
package xmlrepair
