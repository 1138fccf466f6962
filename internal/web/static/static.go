// Package static holds the stylesheet and browser script of the web interface.
package static

import "embed"

//go:embed gasmap.css gasmap.js
var FS embed.FS
