// Package crests builds the manifest that maps normalized club names to
// crest image paths.
//
// Keys are derived from PNG filenames with the same folding the site's club
// names go through, so a presentation layer can look up a crest with
// normalize.Fold(teamName). A table of hand-maintained aliases covers clubs
// whose published name differs from the crest filename.
package crests
