// Package naming renders output filenames from per-kind templates.
//
// Templates use brace placeholders with an optional format spec, for example
// "av{aid}-{p:0>3d}-{title}.mp4". Supported specs cover fill, alignment,
// zero padding, width, and the "d" and "s" types. "{{" and "}}" emit literal
// braces. Text fields are escaped with textutil.EscapeFileName before
// substitution so a title can never introduce a path separator.
//
// Available fields: aid, bvid, title, full_title, up, up_uid, p, parts,
// part_name, cid, ext.
package naming
