package api

import (
	"net/http"
	"net/url"
	"strconv"

	commonerrors "formquali-workers/internal/common/errors"
	"formquali-workers/internal/evaluation/records"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Search == nil {
		s.writeError(w, r, errUnavailable)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, source, err := s.deps.Search.SearchWithSource(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   result.Total,
		"page":    result.Page,
		"size":    result.Size,
		"results": result.Results,
		"source":  source,
	})
}

func filterFromQuery(q url.Values) (records.Filter, error) {
	filter := records.Filter{
		TicketNumber: q.Get("ticketNumber"),
		Analista:     q.Get("analista"),
		Monitor:      q.Get("monitor"),
		Casa:         q.Get("casa"),
		From:         q.Get("from"),
		To:           q.Get("to"),
	}

	if v := q.Get("criticalFailure"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, commonerrors.NewInvalidFilterFormatError("criticalFailure must be true or false")
		}
		filter.CriticalFailure = &b
	}
	if v := q.Get("maxScore"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, commonerrors.NewInvalidFilterFormatError("maxScore must be a number")
		}
		filter.MaxScore = &f
	}
	for name, dst := range map[string]*int{"page": &filter.Page, "size": &filter.Size} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, commonerrors.NewInvalidFilterFormatError(name + " must be an integer")
		}
		*dst = n
	}
	return filter, nil
}
