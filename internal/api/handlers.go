// ABOUTME: HTTP handlers for workout listing, detail, splits, and paces.
// ABOUTME: Maps store and lookup errors onto HTTP status codes.
package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/pace/internal/models"
	"github.com/harperreed/pace/internal/query"
	"github.com/harperreed/pace/internal/report"
	"github.com/harperreed/pace/internal/workout"
)

type workoutHandler struct {
	svc *workout.Service
}

// SplitsResponse is the body of the splits and paces endpoints.
type SplitsResponse struct {
	WorkoutID     string              `json:"workout_id"`
	Source        string              `json:"source"`
	SplitDistance float64             `json:"split_distance,omitempty"`
	Splits        []models.SplitEvent `json:"splits"`
}

func (h *workoutHandler) list(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	workouts, err := h.svc.ListWorkouts(c.Request.Context(), filter)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	c.JSON(http.StatusOK, workouts)
}

func (h *workoutHandler) show(c *gin.Context) {
	w, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *workoutHandler) detail(c *gin.Context) {
	w, ok := h.lookup(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetWorkoutDetail(c.Request.Context(), w)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *workoutHandler) splits(c *gin.Context) {
	distance, err := parseSplitDistance(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	w, ok := h.lookup(c)
	if !ok {
		return
	}
	if distance <= 0 {
		distance = h.svc.SplitDistance()
	}

	splits, err := h.svc.GetSplits(c.Request.Context(), w, distance)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SplitsResponse{
		WorkoutID:     w.ID.String(),
		Source:        string(workout.PaceSourceCalculated),
		SplitDistance: distance,
		Splits:        splits,
	})
}

func (h *workoutHandler) paces(c *gin.Context) {
	distance, err := parseSplitDistance(c)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	w, ok := h.lookup(c)
	if !ok {
		return
	}

	splits, source, err := h.svc.Paces(c.Request.Context(), w, distance)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	resp := SplitsResponse{WorkoutID: w.ID.String(), Source: string(source), Splits: splits}
	if source == workout.PaceSourceCalculated {
		resp.SplitDistance = distance
		if resp.SplitDistance <= 0 {
			resp.SplitDistance = h.svc.SplitDistance()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *workoutHandler) lookup(c *gin.Context) (models.Workout, bool) {
	var (
		w   models.Workout
		err error
	)
	if id := c.Param("id"); strings.EqualFold(id, "latest") {
		w, err = h.svc.LatestWorkout(c.Request.Context(), "")
	} else {
		w, err = h.svc.FindWorkout(c.Request.Context(), id)
	}
	if err != nil {
		abortWithServiceError(c, err)
		return models.Workout{}, false
	}
	return w, true
}

// parseSplitDistance reads ?distance= in meters, or ?unit=km|mi.
// Zero means the service default.
func parseSplitDistance(c *gin.Context) (float64, error) {
	if raw := c.Query("distance"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return 0, errors.New("distance must be a positive number of meters")
		}
		return d, nil
	}
	if raw := c.Query("unit"); raw != "" {
		unit, err := report.ParseUnit(raw)
		if err != nil {
			return 0, err
		}
		return unit.Meters(), nil
	}
	return 0, nil
}

func parseListFilter(c *gin.Context) (workout.ListFilter, error) {
	var filter workout.ListFilter

	if raw := c.Query("kind"); raw != "" {
		kind, ok := models.ParseActivityKind(raw)
		if !ok {
			return filter, errors.New("unknown activity kind: " + raw)
		}
		filter.Kind = kind
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	var err error
	if filter.Since, err = parseTimeParam(c.Query("since")); err != nil {
		return filter, err
	}
	if filter.Until, err = parseTimeParam(c.Query("until")); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, errors.New("times must be RFC 3339 or YYYY-MM-DD: " + raw)
	}
	return t, nil
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrNoWorkoutsFound):
		return http.StatusNotFound
	case errors.Is(err, query.ErrAmbiguousWorkout):
		return http.StatusConflict
	case errors.Is(err, query.ErrNoPermission):
		return http.StatusForbidden
	case errors.Is(err, query.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case query.IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithServiceError(c *gin.Context, err error) {
	abortWithError(c, statusFor(err), err.Error())
}

func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}
