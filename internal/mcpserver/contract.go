package mcpserver

// NoteFormatContract describes the note fields and limits that LLM consumers
// must respect when creating notes.
const NoteFormatContract = `# notehub Note Format Contract

A note is a small record with a title, an optional body and one tag.

## Fields

| Field   | Required | Rules                                               |
|---------|----------|-----------------------------------------------------|
| title   | yes      | 3 to 50 characters; leading/trailing spaces trimmed |
| content | no       | plain text or Markdown, at most 500 characters      |
| tag     | yes      | exactly one of: Todo, Work, Personal, Meeting, Shopping |

The server assigns ` + "`id`, `createdAt` and `updatedAt`" + `.

## Search

` + "`search_notes`" + ` matches the query as a case-insensitive substring of the
title or the content. Results are ordered by last update, newest first, and
split into pages (12 per page unless ` + "`per_page`" + ` says otherwise).
` + "`totalPages`" + ` is 0 when nothing matches.

## Inbox files

Markdown files dropped into the server inbox are imported with the same rules:

` + "```" + `markdown
---
title: Buy oolong
tag: Shopping
---

Two packs, the roasted kind.
` + "```" + `

Without a ` + "`title`" + ` the first ` + "`# heading`" + ` is used, then the file name.
Files that break the rules are moved to ` + "`rejected/`" + ` with an ` + "`.error.txt`" + `
explaining why.
`
