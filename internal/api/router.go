package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"investor-assist/internal/chat"
	"investor-assist/internal/market"
	"investor-assist/internal/store"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type MessageRequest struct {
	Text string `json:"text"`
}

type ActionRequest struct {
	Action string `json:"action"`
}

type ReplyResponse struct {
	OK      bool           `json:"ok"`
	Stage   chat.Stage     `json:"stage"`
	Replies []chat.Message `json:"replies"`
}

func RegisterRoutes(h *server.Hertz, mgr *chat.Manager, mkt chat.MarketData, st *store.Store) {
	h.GET("/healthz", func(_ context.Context, c *app.RequestContext) {
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.POST("/api/v1/chat/sessions", func(_ context.Context, c *app.RequestContext) {
		s, err := mgr.Create()
		if err != nil {
			hlog.Warnf("create session: %v (live=%d)", err, mgr.Len())
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"session": s.Snapshot(),
		})
	})

	h.GET("/api/v1/chat/sessions/:id", func(_ context.Context, c *app.RequestContext) {
		s, ok := mgr.Get(c.Param("id"))
		if !ok {
			writeError(c, errSessionNotFound)
			return
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":      true,
			"session": s.Snapshot(),
		})
	})

	h.DELETE("/api/v1/chat/sessions/:id", func(_ context.Context, c *app.RequestContext) {
		if !mgr.Delete(c.Param("id")) {
			writeError(c, errSessionNotFound)
			return
		}
		c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	h.POST("/api/v1/chat/sessions/:id/messages", func(ctx context.Context, c *app.RequestContext) {
		s, ok := mgr.Get(c.Param("id"))
		if !ok {
			writeError(c, errSessionNotFound)
			return
		}
		var req MessageRequest
		if err := c.BindJSON(&req); err != nil {
			writeError(c, errInvalidBody)
			return
		}
		replies, err := s.Send(ctx, req.Text)
		if err != nil {
			writeError(c, err)
			return
		}
		writeReplies(c, s, replies)
	})

	h.POST("/api/v1/chat/sessions/:id/actions", func(ctx context.Context, c *app.RequestContext) {
		s, ok := mgr.Get(c.Param("id"))
		if !ok {
			writeError(c, errSessionNotFound)
			return
		}
		var req ActionRequest
		if err := c.BindJSON(&req); err != nil {
			writeError(c, errInvalidBody)
			return
		}
		replies, err := s.HandleAction(ctx, req.Action)
		if err != nil {
			writeError(c, err)
			return
		}
		writeReplies(c, s, replies)
	})

	h.GET("/api/v1/quotes/:symbol", func(ctx context.Context, c *app.RequestContext) {
		symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
		if symbol == "" {
			writeError(c, fmt.Errorf("%w: symbol is required", errInvalidBody))
			return
		}
		quote := mkt.FetchQuote(ctx, symbol)
		if quote == nil {
			writeError(c, errQuoteUnavailable)
			return
		}
		series := mkt.FetchTimeSeries(ctx, symbol)
		if series == nil {
			series = []market.Point{}
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":     true,
			"quote":  quote,
			"series": series,
		})
	})

	h.GET("/api/v1/search", func(ctx context.Context, c *app.RequestContext) {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			writeError(c, fmt.Errorf("%w: q is required", errInvalidBody))
			return
		}
		items := mkt.SearchSymbol(ctx, q)
		if items == nil {
			items = []market.Candidate{}
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": items,
		})
	})

	h.GET("/api/v1/lookups", func(_ context.Context, c *app.RequestContext) {
		if st == nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "store not configured",
			})
			return
		}
		limit, err := parseLimit(c.Query("limit"))
		if err != nil {
			writeError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
			return
		}
		offset, err := parseOffset(c.Query("offset"))
		if err != nil {
			writeError(c, fmt.Errorf("%w: %v", errInvalidBody, err))
			return
		}
		symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
		items, err := st.QueryLookups(symbol, limit, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		if items == nil {
			items = []store.LookupRecord{}
		}
		c.JSON(http.StatusOK, map[string]any{
			"ok":    true,
			"items": items,
		})
	})
}

var (
	errSessionNotFound  = errors.New("session not found")
	errInvalidBody      = errors.New("invalid request")
	errQuoteUnavailable = errors.New("quote unavailable")
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrBusy),
		errors.Is(err, chat.ErrActionNotAllowed):
		return http.StatusConflict
	case errors.Is(err, chat.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, errQuoteUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *app.RequestContext, err error) {
	c.JSON(statusFor(err), map[string]any{
		"ok":    false,
		"error": err.Error(),
	})
}

func writeReplies(c *app.RequestContext, s *chat.Session, replies []chat.Message) {
	if replies == nil {
		replies = []chat.Message{}
	}
	c.JSON(http.StatusOK, ReplyResponse{
		OK:      true,
		Stage:   s.Stage(),
		Replies: replies,
	})
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 200, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if v > 1000 {
		return 1000, nil
	}
	return v, nil
}

func parseOffset(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset")
	}
	return v, nil
}
