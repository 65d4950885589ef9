package api

import (
	"time"

	"Sentinel/internal/domain/models"
)

type commandRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type trendRequest struct {
	Scheme string `query:"scheme" validate:"omitempty,oneof=tw us"`
}

type listRequest struct {
	Side   string `param:"side" validate:"oneof=strong weak"`
	Scheme string `query:"scheme" validate:"omitempty,oneof=tw us"`
}

type newsRequest struct {
	Symbol string `query:"symbol" validate:"required,max=16"`
	K      int    `query:"k" default:"5" validate:"gte=1,lte=20"`
}

type triggerRequest struct {
	Phase string `query:"phase" validate:"required,oneof=morning noon evening night"`
}

type newsScoreRequest struct {
	Symbol string `query:"symbol" default:"BTC" validate:"max=16"`
}

type reportResponse struct {
	Key        string `json:"key"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	AgeSeconds int64  `json:"age_s"`
	Annotation string `json:"annotation,omitempty"`
}

func toReportResponse(r models.Report) reportResponse {
	return reportResponse{
		Key:        r.Key,
		Text:       r.Text,
		Source:     r.Source.String(),
		AgeSeconds: int64(r.Age / time.Second),
		Annotation: r.Annotation(),
	}
}

type watchesResponse struct {
	Summary string             `json:"summary"`
	Tasks   []models.WatchTask `json:"tasks"`
}

// lineWebhook is the subset of the LINE Messaging API callback body we read.
type lineWebhook struct {
	Events []lineEvent `json:"events"`
}

type lineEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Message    struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}
