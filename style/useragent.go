package style

import (
	"github.com/flintweb/flint/css"
)

// masterCSS is the user-agent ("master") stylesheet: defaults for the
// common HTML elements, matching CSS 2.1 Appendix D and typical
// browser behavior.
const masterCSS = `
/* CSS 2.1 §9.2.1: Block-level elements */
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, dl, dt, dd,
blockquote, pre, form, fieldset, hr, address, article, aside, footer,
header, main, nav, section, figure, figcaption, center {
	display: block;
}

body { margin: 8px; }

/* Heading margins and font sizes - HTML5 §10.3.1 */
h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
h4 { font-size: 1em; margin: 1.33em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }

p { margin: 1em 0; }

/* Lists */
ul, ol { margin: 1em 0; padding-left: 40px; }
ol { list-style-type: decimal; }
ul { list-style-type: disc; }
li { display: list-item; }

/* CSS 2.1 §17.2: Table default styles */
table { display: table; border-spacing: 2px; border-collapse: separate; }
caption { display: table-caption; text-align: center; }
thead { display: table-header-group; }
tbody { display: table-row-group; }
tfoot { display: table-footer-group; }
col { display: table-column; }
colgroup { display: table-column-group; }
tr { display: table-row; }
td, th { display: table-cell; padding: 1px; }
th { font-weight: bold; text-align: center; }

/* Links - CSS 2.1 §16.3.1 */
a { color: #0000EE; text-decoration: underline; cursor: pointer; }
a:active { color: #FF0000; }

/* Text formatting elements - HTML5 §10.3.1 */
b, strong { font-weight: bold; }
i, em, cite, var, dfn { font-style: italic; }
u, ins { text-decoration: underline; }
s, del, strike { text-decoration: line-through; }
code, kbd, samp, tt { font-family: monospace; }
small { font-size: 0.83em; }
big { font-size: 1.17em; }
sub { vertical-align: sub; font-size: 0.83em; }
sup { vertical-align: super; font-size: 0.83em; }

pre { font-family: monospace; white-space: pre; margin: 1em 0; }

hr { border: 1px inset; margin: 0.5em auto; }

blockquote { margin: 1em 40px; }
dd { margin-left: 40px; }

center { text-align: center; }

/* HTML5 §10.3.1: Elements that are not rendered */
head, title, meta, link, style, script, noscript, base, param { display: none; }

/* Images lay out as inline blocks; br stays inline. */
img { display: inline-block; }
br { display: inline; }
`

// MasterStylesheet parses the built-in user-agent stylesheet.
func MasterStylesheet() *css.Stylesheet {
	return css.Parse(masterCSS)
}
