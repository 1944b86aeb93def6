package links

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"teatrlead/entity"
	"teatrlead/lib/api/response"
	"teatrlead/lib/sl"
)

type Core interface {
	MakeLink(req *entity.LinkRequest) (*entity.LinkResponse, error)
}

// Create issues a shareable bot deep link for a campaign: either pointing at
// a stored slug or carrying an encoded tracking token.
func Create(logger *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.links")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			log.Error("link service not available")
			render.JSON(w, r, response.Error("Link service not available"))
			return
		}

		var req entity.LinkRequest
		if err := render.Bind(r, &req); err != nil {
			log.Warn("invalid request", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Invalid request: %v", err)))
			return
		}

		link, err := handler.MakeLink(&req)
		if err != nil {
			log.Error("make link", sl.Err(err))
			render.Status(r, 400)
			render.JSON(w, r, response.Error(fmt.Sprintf("Request failed: %v", err)))
			return
		}
		log.With(slog.String("link", link.Link)).Debug("link created")

		render.JSON(w, r, response.Ok(link))
	}
}
