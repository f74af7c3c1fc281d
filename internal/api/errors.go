package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	respond "github.com/lifelog/lifelog-server/internal/api/respond"
	"github.com/lifelog/lifelog-server/internal/model"
	"github.com/lifelog/lifelog-server/internal/services"
)

// writeServiceError maps service-layer errors onto HTTP status codes.
// Validation failures are the caller's fault (400), unknown resources 404,
// duplicates 409, collaborator outages 502 and contract violations 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var depErr *services.DependencyError
	var incErr *services.InconsistencyError

	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	case errors.As(err, &depErr):
		log.Error().Stack().Err(err).Str("collaborator", depErr.Collaborator).Msg("dependency unavailable")
		respond.WriteBadGateway(w, "dependency unavailable: "+depErr.Collaborator)
	case errors.As(err, &incErr):
		log.Error().Str("collaborator", incErr.Collaborator).Str("detail", incErr.Detail).Msg("aggregation inconsistency")
		respond.WriteInternalError(w, "aggregation inconsistency: "+incErr.Collaborator)
	default:
		log.Error().Stack().Err(err).Msg("unhandled service error")
		respond.WriteInternalError(w, err.Error())
	}
}
