package mcpserver

// DraftContract describes the rules a journal draft must satisfy before
// create_entry accepts it.
const DraftContract = `# ChronicleLens Draft Rules

A draft becomes a journal entry only when every rule below holds.
Surrounding whitespace is trimmed before checking.

| Field   | Rule                                      |
|---------|-------------------------------------------|
| title   | required, 3 to 100 characters             |
| content | required, 10 to 5000 characters           |
| tags    | optional, at most 5, none blank, no duplicates (case-insensitive) |

Media flags (has_photo, has_audio, has_location) are informational.

Only one add or create runs at a time. A call made while another is in
flight is rejected as busy; retry after it finishes.

Entry ids are zero-padded sequence numbers ("004") and are never reused
after a delete.
`
