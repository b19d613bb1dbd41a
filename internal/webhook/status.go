package webhook

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>House Me Bot Status</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
        .container { background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        h1 { color: #667eea; }
        .status { margin: 10px 0; padding: 10px; background: #f9f9f9; border-radius: 5px; }
        .ok { color: green; font-weight: bold; }
        .error { color: red; font-weight: bold; }
        .failure { color: red; background: #ffe6e6; padding: 15px; border-radius: 5px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>🏠 House Me Telegram Bot</h1>
{{- if .LoadErr }}
        <div class="failure">
            <h2>❌ Configuration Error</h2>
            <p>{{ .LoadErr }}</p>
            <p>Please check your environment variables.</p>
            <p>Required: BOT_TOKEN, MONGO_URI, API_URL</p>
        </div>
{{- else }}
        <p><strong>Status:</strong> ✅ Running and ready to receive webhooks!</p>
        <div class="status">
{{- range .Settings }}
            <p>{{ .Name }}: {{ if .OK }}<span class="ok">✅ Configured</span>{{ else }}<span class="error">❌ Not configured</span>{{ end }}</p>
{{- end }}
            <p>Database: {{ if .DatabaseReady }}<span class="ok">✅ Initialized</span>{{ else }}<span class="error">⏳ Not initialized yet</span>{{ end }}</p>
        </div>
{{- end }}
    </div>
</body>
</html>
`))

type setting struct {
	Name string
	OK   bool
}

type statusData struct {
	LoadErr       string
	Settings      []setting
	DatabaseReady bool
}

// statusPage reports which required settings are present and whether the
// database handle has been initialized. It does not ping the connection.
func (h *Handler) statusPage() Response {
	data := statusData{
		Settings: []setting{
			{"BOT_TOKEN", h.opts.Config.BotToken},
			{"MONGO_URI", h.opts.Config.MongoURI},
			{"API_URL", h.opts.Config.APIURL},
		},
	}
	if h.opts.LoadErr != nil {
		data.LoadErr = h.opts.LoadErr.Error()
	} else {
		data.DatabaseReady = h.proc.Ready()
	}

	var buf bytes.Buffer
	if err := statusTemplate.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("failed to render status page")
		return textResponse(http.StatusInternalServerError, bodyProcessingError)
	}

	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": contentTypeHTML},
		Body:       buf.String(),
	}
}
