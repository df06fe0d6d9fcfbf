package handlers

import (
	"html/template"
	"strings"

	"github.com/phambaophuc/image-converter/internal/models"
)

const uploadFormName = "upload_form"

// UploadFormTemplate must be installed with gin.Engine.SetHTMLTemplate.
var UploadFormTemplate = template.Must(template.New(uploadFormName).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Image Converter</title>
<style>
body { font-family: sans-serif; max-width: 36rem; margin: 3rem auto; }
label, select, input, button { display: block; margin-bottom: 1rem; }
</style>
</head>
<body>
<h1>Batch Image Converter</h1>
<form method="post" action="/" enctype="multipart/form-data">
  <label for="files">Images</label>
  <input id="files" type="file" name="files" accept="{{ .Accept }}" multiple required>
  <label for="output_format">Convert to</label>
  <select id="output_format" name="output_format">
  {{- range .Formats }}
    <option value="{{ .Value }}">{{ .Label }}</option>
  {{- end }}
  </select>
  <button type="submit">Convert and download</button>
</form>
</body>
</html>
`))

type formatOption struct {
	Value string
	Label string
}

func uploadFormData() map[string]interface{} {
	options := make([]formatOption, len(models.OutputFormats))
	for i, f := range models.OutputFormats {
		options[i] = formatOption{Value: string(f), Label: f.Label()}
	}

	return map[string]interface{}{
		"Accept":  strings.Join(models.InputExtensions, ","),
		"Formats": options,
	}
}
