package bundler

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/novotea/nx-lib-bundle/internal/models"
)

// The bundle is generated as CommonJS and wrapped so it also runs as an AMD
// module and as a script exposing a global named after the package. AMD
// loaders fetch the external imports before the factory runs, so its
// synchronous require calls find them.
const umdHeader = `(function (root, factory) {
  if (typeof module === "object" && module.exports) {
    factory(module, module.exports, require);
  } else if (typeof define === "function" && define.amd) {
    define({{ .Dependencies | toJson }}, factory);
  } else {
    var m = { exports: {} };
    factory(m, m.exports, function (id) { return root[id]; });
    root[{{ .GlobalName | quote }}] = m.exports;
  }
})(typeof self !== "undefined" ? self : this, function (module, exports, require) {
{{- if .Comment }}
// {{ .Comment | trim }}
{{- end }}`

const umdFooter = `});`

var umdTemplate = template.Must(template.New("umd").Funcs(sprig.TxtFuncMap()).Parse(umdHeader))

type umdData struct {
	GlobalName   string
	Comment      string
	Dependencies []string
}

// umdWrapper returns the header and footer placed around a CommonJS bundle
// that requires imports.
func umdWrapper(globalName, version string, imports []string) (string, string, error) {
	var buf bytes.Buffer
	data := umdData{
		GlobalName:   globalName,
		Dependencies: append([]string{"module", "exports", "require"}, imports...),
	}
	if version != "" {
		data.Comment = fmt.Sprintf("%s v%s", globalName, version)
	}

	if err := umdTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render UMD wrapper: %w", err)
	}

	return buf.String(), umdFooter, nil
}

// wrapUMD wraps a CommonJS chunk in place and shifts its source map down by
// the lines the header adds.
func wrapUMD(chunk *models.Chunk, globalName, version string) error {
	header, footer, err := umdWrapper(globalName, version, chunk.Imports)
	if err != nil {
		return err
	}

	code := strings.TrimSuffix(chunk.Code, "\n")
	chunk.Code = header + "\n" + code + "\n" + footer + "\n"

	if chunk.Map != nil {
		chunk.Map.Mappings = strings.Repeat(";", strings.Count(header, "\n")+1) + chunk.Map.Mappings
	}

	return nil
}
