package main

import (
	"errors"
	"net/http"

	"github.com/doorman-bot/doorman/screener/denylist"
	"github.com/doorman-bot/doorman/screener/engine"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleJoinEvent(c echo.Context) error {
	var evt engine.JoinEvent
	if err := c.Bind(&evt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.engine.ProcessJoinEvent(c.Request().Context(), evt); err != nil {
		s.logger.Error("processing join event", "err", err, "subject", evt.SubjectID)
		return echo.NewHTTPError(http.StatusInternalServerError, "join event failed")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleRemovalEvent(c echo.Context) error {
	var evt engine.RemovalEvent
	if err := c.Bind(&evt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.engine.ProcessRemovalEvent(c.Request().Context(), evt); err != nil {
		s.logger.Error("processing removal event", "err", err, "subject", evt.SubjectID)
		return echo.NewHTTPError(http.StatusInternalServerError, "removal event failed")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleDecisionEvent(c echo.Context) error {
	var evt engine.DecisionEvent
	if err := c.Bind(&evt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.engine.ProcessDecisionEvent(c.Request().Context(), evt); err != nil {
		s.logger.Error("processing decision event", "err", err, "subject", evt.SubjectID)
		return echo.NewHTTPError(http.StatusInternalServerError, "decision event failed")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleMessageEvent(c echo.Context) error {
	var evt engine.MessageEvent
	if err := c.Bind(&evt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.engine.ProcessMessageEvent(c.Request().Context(), evt); err != nil {
		s.logger.Error("processing message event", "err", err, "author", evt.AuthorID)
		return echo.NewHTTPError(http.StatusInternalServerError, "message event failed")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleDenylistExport(c echo.Context) error {
	out, err := s.engine.Denylist.ExportAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "denylist export failed")
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", out)
}

func (s *Server) handleDenylistAdd(c echo.Context) error {
	created, err := s.engine.Denylist.Add(c.Request().Context(), c.Param("fp"))
	if err != nil {
		if errors.Is(err, denylist.ErrInvalidFingerprint) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "denylist add failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"created": created})
}

func (s *Server) handleDenylistRemove(c echo.Context) error {
	removed, err := s.engine.Denylist.Remove(c.Request().Context(), c.Param("fp"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "denylist remove failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleDenylistCheck(c echo.Context) error {
	present, err := s.engine.Denylist.Contains(c.Request().Context(), c.Param("fp"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "denylist check failed")
	}
	return c.JSON(http.StatusOK, map[string]bool{"present": present})
}

type screeningToggleRequest struct {
	Enabled          bool  `json:"enabled"`
	AgeThresholdDays int64 `json:"age_threshold_days,omitempty"`
}

func (s *Server) handleScreeningToggle(c echo.Context) error {
	var req screeningToggleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.engine.SetScreeningEnabled(req.Enabled)
	if req.AgeThresholdDays > 0 {
		s.engine.SetAgeThresholdDays(req.AgeThresholdDays)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleWarningList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.Registry.List(c.Request().Context()))
}

func (s *Server) handleAuthorStats(c echo.Context) error {
	stats, err := s.engine.GetAuthorStats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "stats lookup failed")
	}
	return c.JSON(http.StatusOK, stats)
}
