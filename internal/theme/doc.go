// Package theme resolves wayglance stylesheets: the bundled base sheet, the
// bundled partials a user sheet may import, and @import inlining.
package theme
