package mcpserver

// FormatURI is the resource URI of the ingot format description.
const FormatURI = "nibi://ingot-format"

// IngotFormat describes the ingot document format that LLM consumers
// should follow when writing site content.
const IngotFormat = `# Ingot Document Format

An ingot is a plain-text file ending in ` + "`.ingot`" + `. It has up to three
parts separated by blank lines: front matter, body, back matter.

## Structure

` + "```" + `
id: 42
title: Release notes
pname: release-notes
status: publish
published: 2025-01-15T09:00:00Z
tags: go, web
category: [news, 'tech/go']

Release notes

Body text in Markdown. The first line is the title when a blank line
follows it.

summary: Shown in listings.
` + "```" + `

## Rules

1. **Front matter** is everything before the first blank line. It has no
   fences. Each field is ` + "`key: value`" + ` on its own line.
2. **Back matter** is an optional block after the last blank line. It uses
   the same syntax and wins over front matter for the same key. A trailing
   block without any ` + "`key: value`" + ` pair stays body text.
3. **Values** run to the end of the line. Quote with ` + "`'`" + ` or ` + "`\"`" + ` to keep
   brackets or slashes. ` + "`[a, b]`" + ` is a list.
4. **Comments**: ` + "`// line`" + ` and ` + "`/* block */`" + `.
5. **Title**: the first non-blank body line followed by a blank line. A
   ` + "`title`" + ` key is used when the body has no such line.
6. **Encoding** is UTF-8.

## Keys

| Key (aliases) | Meaning |
|---|---|
| id, ingot_id | numeric id |
| author | numeric author id |
| pname (path_name, url_path_name, path_url_name, post_url_name, page_url_name) | URL path name; derived from the title when absent |
| title | title when the body has none |
| excerpt, summary | short description |
| published, created | publication timestamp (RFC 3339 or a date) |
| modified, updated | modification timestamp |
| status | draft, publish or private |
| comment_status, comments | open or close |
| to, type | post, page, article, top, asis or a custom target |
| tag, tags | comma list or [list] of tag names, path names or ids |
| category, categories | comma list or [list]; categories may use full paths like tech/go |

Unknown keys are ignored. Values that cannot be read are dropped and listed
under ` + "`issues`" + ` in parse results.
`
