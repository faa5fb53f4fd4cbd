package manifest

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/KaramelBytes/multiplot/internal/chart"
)

const SchemaID = "https://github.com/KaramelBytes/multiplot/manifest.schema.json"

// Schema describes the manifest file format for editors and CI linting.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		FieldNameTag:   "yaml",
	}
	s := r.ReflectFromType(reflect.TypeOf(Manifest{}))
	s.ID = SchemaID
	s.Title = "multiplot manifest"

	describe := map[string]string{
		"data":          "CSV, TSV or XLSX file, relative to the manifest",
		"group_by":      "categorical column the rows are split on",
		"x":             "numeric column for the x axis",
		"y":             "numeric column for the y axis",
		"title_format":  "chart title template; placeholders {group}, {x}, {y}",
		"groups":        "charted groups in page order; all groups when empty",
		"expect_groups": "fail unless at least this many groups exist",
		"output":        "HTML file written, relative to the manifest",
	}
	for name, desc := range describe {
		if p, ok := s.Properties.Get(name); ok {
			p.Description = desc
		}
	}
	if p, ok := s.Properties.Get("renderer"); ok {
		p.Enum = []any{chart.RendererECharts, chart.RendererSVG, chart.RendererPNG}
	}
	if p, ok := s.Properties.Get("expect_groups"); ok {
		p.Minimum = json.Number("0")
	}
	return s
}
