// Package bilibili is a small client for the bilibili web API.
//
// It implements the listing and metadata collaborators of the sync run
// (ListFavorites, FetchItem) and exposes the stream, danmaku, and cover
// endpoints the acquisition pipeline needs. Credentials come from a Netscape
// cookies.txt export and are attached to every request the client makes.
//
// The client performs no retries; callers decide what a failure means.
package bilibili
