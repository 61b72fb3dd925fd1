// Package providers defines the provider-neutral subtitle search and download
// model shared by the OpenSubtitles and SubDL clients.
//
// Results are a tagged union: common normalised fields plus exactly one
// provider-specific detail. Ref identifies a downloadable subtitle and
// round-trips through its string form ("opensubtitles:<file_id>" or
// "subdl:<path>") so API clients can hand it back verbatim. Registry fans a
// query out to every enabled provider concurrently.
package providers
