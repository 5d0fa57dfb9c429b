package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"complaint-tracker-backend/internal/store"
	"complaint-tracker-backend/internal/token"
	"complaint-tracker-backend/internal/workflow"
)

// actorHeader carries the optional staff identity supplied by the identity
// provider in front of this service. Absence means anonymous.
const actorHeader = "X-Actor"

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store         store.Store
	engine        *workflow.Engine
	codec         *token.Codec
	webpush       *webpush.Options
	publicBaseURL string
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, engine *workflow.Engine, codec *token.Codec, webpushOptions *webpush.Options, publicBaseURL string) *Handler {
	return &Handler{
		store:         s,
		engine:        engine,
		codec:         codec,
		webpush:       webpushOptions,
		publicBaseURL: publicBaseURL,
	}
}
