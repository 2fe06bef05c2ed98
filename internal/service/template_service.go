package service

import (
	"sort"
	"strings"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
)

// DefaultTemplates are used when a follow-up is queued without a body.
var DefaultTemplates = map[model.Channel]string{
	model.ChannelSMS:   "Hi {first_name}, just checking in about {job_title}. Reply here with any questions.",
	model.ChannelEmail: "Hi {first_name},\n\nI wanted to follow up on {job_title}. Let me know if you have any questions or would like to go ahead.\n\nThanks!",
}

// RenderTemplate replaces each {key} in template with data[key] in a single
// pass. Substituted values are never expanded again.
func RenderTemplate(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RenderFollowupBody fills the default template of channel for a job.
func RenderFollowupBody(channel model.Channel, customer *model.Customer, job *model.Job) string {
	data := map[string]string{
		"first_name":    "there",
		"last_name":     "",
		"customer_name": "",
		"job_title":     "your job",
	}
	if customer != nil {
		if name := strings.TrimSpace(customer.FirstName); name != "" {
			data["first_name"] = name
		}
		data["last_name"] = customer.LastName
		data["customer_name"] = customer.DisplayName()
	}
	if job != nil && strings.TrimSpace(job.Title) != "" {
		data["job_title"] = job.Title
	}
	return RenderTemplate(DefaultTemplates[channel], data)
}
