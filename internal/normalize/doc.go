// Package normalize turns scraped HTML snippets into comparable plain text.
//
// Clean produces display text (tags stripped, entities decoded, whitespace
// collapsed). Fold goes further for name matching: accents are removed, the
// text is lowercased and every rune that is not a letter or digit becomes a
// space, so "Grupo Despórtivo_Foo-Bar" and "grupo desportivo foo bar" compare
// equal.
package normalize
