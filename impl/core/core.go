// Package core backs the HTTP API: it glues the link codec, the mapping
// store and the statistics aggregator behind one handler type.
package core

import (
	"crypto/subtle"
	"fmt"
	"log/slog"

	"teatrlead/entity"
	"teatrlead/internal/deeplink"
	"teatrlead/internal/stats"
	"teatrlead/lib/clock"
	"teatrlead/lib/sl"
)

type MappingStore interface {
	GetLinkMapping(slug string) (*entity.LinkMapping, error)
}

type Core struct {
	apiToken    string
	botUsername string
	mappings    MappingStore
	stats       *stats.Aggregator
	log         *slog.Logger
}

func New(apiToken, botUsername string, mappings MappingStore, aggregator *stats.Aggregator, log *slog.Logger) *Core {
	return &Core{
		apiToken:    apiToken,
		botUsername: botUsername,
		mappings:    mappings,
		stats:       aggregator,
		log:         log.With(sl.Module("core")),
	}
}

func (c *Core) AuthenticateByToken(token string) error {
	if c.apiToken == "" {
		return fmt.Errorf("api token not configured")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(c.apiToken)) != 1 {
		return fmt.Errorf("token mismatch")
	}
	return nil
}

// MakeLink produces a shareable deep link. A request naming a slug points at
// the stored mapping; a request with inline show data gets an encoded token.
func (c *Core) MakeLink(req *entity.LinkRequest) (*entity.LinkResponse, error) {
	if req.Slug != "" {
		if c.mappings == nil {
			return nil, fmt.Errorf("mapping store not connected")
		}
		mapping, err := c.mappings.GetLinkMapping(req.Slug)
		if err != nil {
			return nil, fmt.Errorf("load mapping: %w", err)
		}
		if mapping == nil {
			return nil, fmt.Errorf("unknown slug: %s", req.Slug)
		}
		return &entity.LinkResponse{
			StartParam: req.Slug,
			Link:       deeplink.BotLink(c.botUsername, req.Slug),
		}, nil
	}

	if req.City == "" || req.Project == "" || req.ShowDatetime == "" {
		return nil, fmt.Errorf("either slug or city, project and show_datetime are required")
	}
	if !clock.ValidShow(req.ShowDatetime) {
		return nil, fmt.Errorf("show_datetime must look like %q", clock.ShowLayout)
	}

	token := deeplink.Encode(req.Tracking())
	return &entity.LinkResponse{
		StartParam: token,
		Link:       deeplink.BotLink(c.botUsername, token),
	}, nil
}

func (c *Core) StatsOverview() (*stats.Overview, error) {
	return c.stats.Overview()
}

func (c *Core) StatsFunnel() ([]stats.FunnelStage, error) {
	return c.stats.Funnel()
}

func (c *Core) StatsByCity() ([]stats.Bucket, error) {
	return c.stats.ByCity()
}

func (c *Core) StatsByProject() ([]stats.Bucket, error) {
	return c.stats.ByProject()
}

func (c *Core) StatsBySource() ([]stats.Bucket, error) {
	return c.stats.BySource()
}
