// Package content loads the season catalog: titles, caption scripts, track
// lengths, and the interview question bank.
//
// A catalog is bundled into the binary. paths.content_path may point at a
// replacement TOML file, whose seasons may reference SubRip caption files
// relative to the catalog's directory instead of listing captions inline.
package content
