// Package subdl searches and downloads subtitles from SubDL.
//
// SubDL serves subtitles as archives; Extract pulls the first .srt entry out
// of a ZIP or RAR payload (SubDL frequently serves RAR data under a .zip
// name) and passes plain subtitle bodies through untouched.
package subdl
