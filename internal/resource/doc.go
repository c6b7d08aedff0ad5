// Package resource turns the sync command's positional argument into a
// canonical Reference.
//
// Parse is a short ordered decision table: a configured section name, a
// space.bilibili.com favourites URL, a bare aid, an "av" token, or a "BV"
// token. The first rule that matches decides the outcome and later rules are
// never consulted. The BV codec used for the last rule lives in bvid.go and is
// also exposed through the encode/decode commands.
package resource
