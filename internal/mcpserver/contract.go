package mcpserver

// RemindersFormat describes the reminders file syntax for agents that edit
// it directly or through add_reminder.
const RemindersFormat = `# paperterm reminders file

One reminder per line, UTF-8. The dashboard shows the first six in two
columns of three.

## Line syntax

` + "```" + `text
# comment lines and blank lines are ignored
[ ] pending reminder at normal priority
plain text is also pending at normal priority
[!] high priority reminder, drawn in black
[x] done reminder, drawn in gray
[X] also done
` + "```" + `

## Rules

1. Only the prefixes above are recognized; anything else is part of the text.
2. Long reminders are truncated to 35 characters on the panel.
3. The file is re-read on every render. In serve mode an edit triggers a
   re-render within a second.
4. Use the add_reminder tool to append; it normalizes whitespace and never
   rewrites existing lines.
`
