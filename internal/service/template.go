// internal/service/template.go
package service

import (
	"strings"

	"github.com/promopilot/promopilot-backend/internal/model"
)

// RenderContent formats campaign content for a channel.
func RenderContent(content string, channel *model.Channel) string {
	return RenderTemplate(content, map[string]string{
		"channel_title": channel.Title,
	})
}

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
