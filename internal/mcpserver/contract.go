package mcpserver

// ReferenceSyntax describes how references are classified and resolved so
// that LLM consumers can write links that behave as intended.
const ReferenceSyntax = `# notelink Reference Syntax

A reference is the target text of a Markdown link ` + "`" + `[text](target)` + "`" + ` or a
wikilink ` + "`" + `[[target]]` + "`" + `. Its kind is decided by the first rule that matches:

1. **file** – starts with ` + "`" + `file:` + "`" + `. Opened with the system's default
   application. ` + "`" + `file:~/papers/a.pdf` + "`" + ` and ` + "`" + `file:/abs/path` + "`" + ` are used as is;
   other paths are resolved against the anchor directory.
2. **url** – looks like a URL (` + "`" + `https://example.org` + "`" + `). Opened externally.
3. **citation** – starts with ` + "`" + `@` + "`" + ` (` + "`" + `@smith2020` + "`" + `). Looked up in the
   bibliography; the entry's file, URL, DOI or howpublished field is followed instead.
4. **anchor** – starts with ` + "`" + `#` + "`" + ` (` + "`" + `#next-steps` + "`" + `). Jumps to a heading of the
   active document. Headings match by GitHub-style slug or by text, ignoring case.
5. **filename** – anything else (` + "`" + `projects/todo` + "`" + `). Opened inside the notebook.
   A missing extension gets the configured one (` + "`" + `.md` + "`" + `), missing directories may
   be created, and ` + "`" + `note.md#heading` + "`" + ` opens the note and then jumps to the heading.

## Anchor directory

Relative file and filename references are joined to one directory, chosen by
` + "`" + `links.relative_to` + "`" + `:

- ` + "`" + `root` + "`" + ` – the notebook root.
- ` + "`" + `first` + "`" + ` (default) – the directory of the first document opened in the session.
- ` + "`" + `current` + "`" + ` – the directory of the active document.

## Tools

- ` + "`" + `follow_link` + "`" + ` follows a reference, optionally from a given document.
- ` + "`" + `list_links` + "`" + ` shows every link of a note and where it leads without opening anything.
- ` + "`" + `go_back` + "`" + ` returns to the previous document; ` + "`" + `get_history` + "`" + ` lists the stack.
`
