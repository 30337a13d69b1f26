package notify

import (
	"html"

	"github.com/valyala/fasttemplate"
)

// render substitutes {{name}} tags; unknown tags are left as-is.
func render(tpl string, vars map[string]string, escape bool) string {
	m := make(map[string]any, len(vars))
	for k, v := range vars {
		if escape {
			v = html.EscapeString(v)
		}
		m[k] = v
	}
	return fasttemplate.ExecuteStringStd(tpl, "{{", "}}", m)
}
