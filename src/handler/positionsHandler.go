package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/repository"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"
)

type positionStore interface {
	List(ctx context.Context) ([]model.PositionWithSymbol, error)
	Create(ctx context.Context, position *model.Position) error
}

type positionCloser interface {
	Close(ctx context.Context, id uint, profitPercentage, profitUSDT float64) (int64, error)
	CloseStrict(ctx context.Context, id uint, profitPercentage, profitUSDT float64) error
}

// ListPositionsHandler returns every position with its pair symbol, newest first.
func ListPositionsHandler(repo positionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions, err := repo.List(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list positions")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, positions)
	}
}

// CreatePositionHandler opens a new position. The stored status is always OPEN.
func CreatePositionHandler(repo positionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.CreatePositionPayload
		if err := decodeJSON(w, r, &payload); err != nil {
			logger.WithError(err).Warn("invalid create position payload")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := payload.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		position := payload.ToPosition()
		if err := repo.Create(r.Context(), position); err != nil {
			logger.WithError(err).Error("failed to create position")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, position)
	}
}

// ClosePositionHandler records profit figures and closes the position.
//
// By default a close that matches nothing still answers {"success": true},
// which existing clients rely on. With strict set, an unknown id answers 404
// and an already closed position answers 409.
func ClosePositionHandler(repo positionCloser, strict bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id == 0 {
			writeError(w, http.StatusBadRequest, "invalid position id")
			return
		}

		var payload model.ClosePositionPayload
		if err := decodeJSON(w, r, &payload); err != nil {
			logger.WithError(err).Warn("invalid close position payload")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := payload.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		positionID := uint(id)
		pct, usdt := *payload.ProfitPercentage, *payload.ProfitUSDT

		if strict {
			err = repo.CloseStrict(r.Context(), positionID, pct, usdt)
		} else {
			_, err = repo.Close(r.Context(), positionID, pct, usdt)
		}

		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		case errors.Is(err, repository.ErrPositionNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, repository.ErrPositionAlreadyClosed):
			writeError(w, http.StatusConflict, err.Error())
		default:
			logger.WithError(err).WithField("position_id", positionID).Error("failed to close position")
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}
