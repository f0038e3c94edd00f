package geminitext

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/aredu/arcportal/core/statement"
)

const baseURL = "https://generativelanguage.googleapis.com/v1beta/models/"

var restSendFunc = rest.Send // mockable

type service struct {
	key   string
	model string
}

var _ statement.Generator = (*service)(nil)

func NewService(key, model string) statement.Generator {
	return &service{key: key, model: model}
}

type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}
	content struct {
		Parts []part `json:"parts"`
	}
	part struct {
		Text string `json:"text"`
	}
	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

func (svc *service) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding generation request")
	}

	req := rest.Request{
		Method:      rest.Post,
		BaseURL:     baseURL + svc.model + ":generateContent",
		Headers:     map[string]string{"Content-Type": "application/json"},
		QueryParams: map[string]string{"key": svc.key},
		Body:        body,
	}
	res, err := restSendFunc(req)
	if err != nil {
		return "", errors.Wrap(err, "calling generation API")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("generation API returned %d", res.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal([]byte(res.Body), &out); err != nil {
		return "", errors.Wrap(err, "decoding generation response")
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generation API returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
