// internal/evaluation/records/fallback.go
package records

import (
	"context"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/common/logger"
	"formquali-workers/internal/models"
)

const (
	SourceIndex    = "elasticsearch"
	SourceDatabase = "postgres"
)

// FallbackSearcher queries the index and falls back to the database when
// the index is missing or unreachable. Query errors are not retried.
type FallbackSearcher struct {
	index    Searcher
	database Searcher
	logger   logger.Logger
}

// NewFallbackSearcher accepts a nil index, in which case every search goes
// to the database.
func NewFallbackSearcher(index, database Searcher, log logger.Logger) *FallbackSearcher {
	return &FallbackSearcher{index: index, database: database, logger: log}
}

func (s *FallbackSearcher) Search(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, error) {
	result, _, err := s.SearchWithSource(ctx, filter)
	return result, err
}

// SearchWithSource also reports which backend answered.
func (s *FallbackSearcher) SearchWithSource(ctx context.Context, filter Filter) (*models.MonitoriaSearchResult, string, error) {
	if err := filter.Validate(); err != nil {
		return nil, "", commonerrors.NewInvalidFilterFormatError(err.Error())
	}

	if s.index != nil {
		result, err := s.index.Search(ctx, filter)
		if err == nil {
			return result, SourceIndex, nil
		}
		if !fallsBack(err) {
			return nil, "", err
		}
		s.logger.Warn("search index unavailable, querying database", map[string]interface{}{
			"error": err,
		})
	}

	result, err := s.database.Search(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	return result, SourceDatabase, nil
}

func fallsBack(err error) bool {
	return commonerrors.HasCode(err, commonerrors.ErrCodeIndexNotFound) ||
		commonerrors.HasCode(err, commonerrors.ErrCodeElasticsearchConnectionFailed) ||
		commonerrors.HasCode(err, commonerrors.ErrCodeSearchTimeout)
}
