package statistics

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"teatrlead/internal/stats"
	"teatrlead/lib/api/response"
	"teatrlead/lib/sl"
)

type Core interface {
	StatsOverview() (*stats.Overview, error)
	StatsFunnel() ([]stats.FunnelStage, error)
	StatsByCity() ([]stats.Bucket, error)
	StatsByProject() ([]stats.Bucket, error)
	StatsBySource() ([]stats.Bucket, error)
}

func Overview(logger *slog.Logger, handler Core) http.HandlerFunc {
	return serve(logger, "overview", handler, func(h Core) (interface{}, error) {
		return h.StatsOverview()
	})
}

func Funnel(logger *slog.Logger, handler Core) http.HandlerFunc {
	return serve(logger, "funnel", handler, func(h Core) (interface{}, error) {
		return h.StatsFunnel()
	})
}

func Cities(logger *slog.Logger, handler Core) http.HandlerFunc {
	return serve(logger, "cities", handler, func(h Core) (interface{}, error) {
		return h.StatsByCity()
	})
}

func Projects(logger *slog.Logger, handler Core) http.HandlerFunc {
	return serve(logger, "projects", handler, func(h Core) (interface{}, error) {
		return h.StatsByProject()
	})
}

func Sources(logger *slog.Logger, handler Core) http.HandlerFunc {
	return serve(logger, "sources", handler, func(h Core) (interface{}, error) {
		return h.StatsBySource()
	})
}

func serve(logger *slog.Logger, report string, handler Core, load func(Core) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.statistics")

		log := logger.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("report", report),
		)

		if handler == nil {
			log.Error("statistics service not available")
			render.JSON(w, r, response.Error("Statistics service not available"))
			return
		}

		data, err := load(handler)
		if err != nil {
			log.Error("load report", sl.Err(err))
			render.JSON(w, r, response.Error(fmt.Sprintf("Request failed: %v", err)))
			return
		}

		render.JSON(w, r, response.Ok(data))
	}
}
