package api

import (
	"time"

	models "LevelBias/internal/domain/models"
	domrepo "LevelBias/internal/domain/repository"
	"LevelBias/internal/service/ratelimit"
	"LevelBias/internal/usecase"
	xhttp "LevelBias/pkg/http"
	xlogger "LevelBias/pkg/logger"
	"LevelBias/pkg/util"

	"github.com/labstack/echo/v4"
)

// PredictionEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type PredictionEchoHandler struct {
	logger  *xlogger.Logger
	predict *usecase.PredictUseCase
	candles *usecase.CandlesUseCase
	weights *usecase.WeightsUseCase
	rl      *ratelimit.Limiter
}

func NewPredictionEchoHandler(
	logger *xlogger.Logger,
	predict *usecase.PredictUseCase,
	candles *usecase.CandlesUseCase,
	weights *usecase.WeightsUseCase,
) *PredictionEchoHandler {
	return &PredictionEchoHandler{
		logger:  logger,
		predict: predict,
		candles: candles,
		weights: weights,
		rl:      ratelimit.New(),
	}
}

func (h *PredictionEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/predict", h.Predict)
	g.GET("/candles", h.Candles)
	g.GET("/weights", h.GetWeights)
	g.PUT("/weights", h.PutWeights)
	g.POST("/weights/reset", h.ResetWeights)
}

func (h *PredictionEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":predict", 5, 2) {
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, 429, "rate limited")
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.predict.Predict(c.Request().Context(), usecase.PredictParams{
		Symbol:     req.Symbol,
		Instrument: req.Instrument,
		Timezone:   req.Timezone,
		Timestamp:  req.Timestamp,
		N:          req.N,
		Timeframe:  tf,
	})
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	now := time.Now().UTC()
	to := util.ParseTimeDefault(req.To, now)
	from := util.ParseTimeDefault(req.From, to.Add(-24*time.Hour))
	from, to = util.AlignFromTo(from, to, string(tf))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionEchoHandler) GetWeights(c echo.Context) error {
	req := &models.WeightsGetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.weights.Get(c.Request().Context(), req.Instrument)
	if err != nil {
		h.logger.Error("weights get error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionEchoHandler) PutWeights(c echo.Context) error {
	req := &models.WeightsPutRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.weights.Set(c.Request().Context(), req.Instrument, req.Weights, req.ChangedBy)
	if err != nil {
		h.logger.Warn("weights set rejected", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_WEIGHTS",
			Message: err.Error(),
		}})
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionEchoHandler) ResetWeights(c echo.Context) error {
	req := &models.WeightsResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.weights.Reset(c.Request().Context(), req.Instrument, req.ChangedBy)
	if err != nil {
		h.logger.Error("weights reset error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
