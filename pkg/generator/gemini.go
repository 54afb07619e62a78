package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ischedule/ischedule/internal/config"
	"github.com/ischedule/ischedule/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"google.golang.org/genai"
)

// completeFunc sends one prompt with a system instruction and returns the raw response text.
type completeFunc func(ctx context.Context, systemInstruction, prompt string) (string, error)

type Gemini struct {
	complete completeFunc
	location *time.Location
	language string
}

var scheduleSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString, Description: "Short title of the event"},
			"startTime":   {Type: genai.TypeString, Description: "Start time in HH:MM format, e.g. '09:00'"},
			"endTime":     {Type: genai.TypeString, Description: "End time in HH:MM format, e.g. '10:30'"},
			"location":    {Type: genai.TypeString, Description: "Location, if any"},
			"description": {Type: genai.TypeString, Description: "Short description"},
		},
		Required: []string{"title", "startTime", "endTime"},
	},
}

func NewGemini(ctx context.Context, cfg config.Gemini, location *time.Location, lang string) (*Gemini, error) {
	if cfg.ApiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	complete := func(ctx context.Context, systemInstruction, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    scheduleSchema,
			Temperature:       genai.Ptr(cfg.Temperature),
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return newGemini(complete, location, lang), nil
}

func newGemini(complete completeFunc, location *time.Location, lang string) *Gemini {
	if location == nil {
		location = time.Local
	}
	return &Gemini{complete: complete, location: location, language: lang}
}

func (g *Gemini) Generate(ctx context.Context, prompt string, targetDate time.Time) ([]calendar.Event, error) {
	raw, err := g.complete(ctx, g.systemInstruction(targetDate), prompt)
	if err != nil {
		log.Errorf("gemini request failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	events, err := parseItems(raw, targetDate, g.location)
	if err != nil {
		log.Errorf("failed to parse gemini response: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	log.Debugf("gemini generated %d events", len(events))
	return events, nil
}

func (g *Gemini) systemInstruction(targetDate time.Time) string {
	return fmt.Sprintf(`You are a smart personal scheduling assistant.
Your task is to create a list of calendar events based on the user's request.
The target date for this schedule is: %s.

Return plain JSON following the defined schema.
Return only the JSON array, without markdown formatting.
Make sure the times are reasonable and logical.
Response language: %s.`,
		targetDate.In(g.location).Format("Monday, 2 January 2006"),
		languageName(g.language),
	)
}

func languageName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "English"
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return "English"
}
