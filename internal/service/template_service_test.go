package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rDingyFourFour/handybob-sub000/internal/model"
	"github.com/rDingyFourFour/handybob-sub000/internal/service"
)

func TestRenderTemplate(t *testing.T) {
	got := service.RenderTemplate("Hi {first_name}, about {job_title}", map[string]string{
		"first_name": "Dana",
		"job_title":  "the deck",
	})
	assert.Equal(t, "Hi Dana, about the deck", got)
}

func TestRenderFollowupBody(t *testing.T) {
	customer := &model.Customer{FirstName: "Dana", LastName: "Lee"}
	job := &model.Job{Title: "Deck repair"}

	assert.Equal(t,
		"Hi Dana, just checking in about Deck repair. Reply here with any questions.",
		service.RenderFollowupBody(model.ChannelSMS, customer, job))

	// missing names fall back to neutral wording
	assert.Equal(t,
		"Hi there, just checking in about your job. Reply here with any questions.",
		service.RenderFollowupBody(model.ChannelSMS, &model.Customer{}, nil))

	assert.Contains(t, service.RenderFollowupBody(model.ChannelEmail, customer, job), "follow up on Deck repair")
}

func TestRenderTemplate_ValuesAreNotExpanded(t *testing.T) {
	customer := &model.Customer{FirstName: "{job_title}"}
	job := &model.Job{Title: "{first_name}"}

	for i := 0; i < 20; i++ {
		assert.Equal(t,
			"Hi {job_title}, just checking in about {first_name}. Reply here with any questions.",
			service.RenderFollowupBody(model.ChannelSMS, customer, job))
	}
}
