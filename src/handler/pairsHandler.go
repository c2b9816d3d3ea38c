package handler

import (
	"context"
	"net/http"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"

	logger "github.com/sirupsen/logrus"
)

type pairStore interface {
	List(ctx context.Context) ([]model.Pair, error)
	Create(ctx context.Context, pair *model.Pair) error
}

// ListPairsHandler returns every pair, newest first.
func ListPairsHandler(repo pairStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := repo.List(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to list pairs")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, pairs)
	}
}

// CreatePairHandler validates the payload and stores a new pair.
func CreatePairHandler(repo pairStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.CreatePairPayload
		if err := decodeJSON(w, r, &payload); err != nil {
			logger.WithError(err).Warn("invalid create pair payload")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := payload.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		pair := payload.ToPair()
		if err := repo.Create(r.Context(), pair); err != nil {
			logger.WithError(err).Error("failed to create pair")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}
