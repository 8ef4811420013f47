package assets

import (
	"fmt"
	"strings"
	"unicode"
)

// esbuild has no UMD output, so UMD artifacts are built as CommonJS and
// wrapped in a loader that supports AMD, CommonJS and a browser global.
const umdTemplate = `(function (root, factory) {
  if (typeof define === "function" && define.amd) { define([], factory); }
  else if (typeof module === "object" && module.exports) { module.exports = factory(); }
  else { root[%q] = factory(); }
})(typeof globalThis !== "undefined" ? globalThis : typeof self !== "undefined" ? self : this, function () {
var module = { exports: {} }, exports = module.exports;`

const umdFooter = `return module.exports;
});`

func umdHeader(globalName string) string {
	return fmt.Sprintf(umdTemplate, globalName)
}

// GlobalName derives a JavaScript identifier from a library name, so
// "web-components" becomes "webComponents".
func GlobalName(libraryName string) string {
	parts := strings.FieldsFunc(libraryName, func(r rune) bool {
		return !isIdentRune(r)
	})

	var sb strings.Builder
	for i, part := range parts {
		if i == 0 {
			sb.WriteString(part)
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	name := sb.String()
	if name == "" {
		return "_"
	}

	if unicode.IsDigit([]rune(name)[0]) {
		name = "_" + name
	}

	return name
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
