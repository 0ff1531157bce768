// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package markdown converts Markdown documents into docview element trees.
//
// Build parses CommonMark with the usual extensions (tables, fenced code,
// autolinks, strikethrough) and maps every block to an element:
//
//   - headings and paragraphs become text boxes; emphasis, links and
//     inline code become styled runs
//   - fenced code blocks are coloured by token with a chroma style
//   - block quotes set the quote depth of the boxes they contain
//   - list items are indented; "[ ]" and "[x]" items become checkboxes
//   - tables become docview.Table, thematic breaks visible spacers
//   - <details> with an optional <summary> becomes a collapsible section
//
// The returned elements carry no bounds; run them through a positioner
// before rendering.
package markdown
