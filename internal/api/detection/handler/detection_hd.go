package detectionHandler

import (
	"FallWatch/internal/api/detection"
	contextPkg "FallWatch/pkg/context"
	"FallWatch/pkg/handlerUtil"
	jwtPkg "FallWatch/pkg/jwt"
	"FallWatch/pkg/log"
	"FallWatch/pkg/utils"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// HandlePredict runs the whole-video classifier on the multipart "video"
// part. Analysis is not bounded by a request timeout.
func (h *DetectionHandler) HandlePredict(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c := contextPkg.FromFiberCtx(ctx)

	errHandler := handlerUtil.New(h.log)

	file, err := ctx.FormFile("video")
	if err != nil {
		return errHandler.Handle(ctx, requestID, missingVideoError(ctx), ctx.Path(), "read_video_part")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing video upload")

	if err := h.utils.ValidateVideoFile(file); err != nil {
		return errHandler.Handle(ctx, requestID, uploadError(err), ctx.Path(), "validate_video_file")
	}

	req := detection.PredictRequest{File: file}
	if user, err := jwtPkg.GetUserLoginData(ctx); err == nil {
		req.UserID = user.ID
		req.Email = user.Email
		req.Username = user.Username
		c = contextPkg.WithUserID(c, user.ID)
	}

	res, err := h.detectionService.Predict(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "predict")
	}

	ctx.Set("X-Analysis-ID", res.AnalysisID)
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

// missingVideoError tells a "video" part sent without a filename, which is
// what a browser submits when no file was chosen, from no part at all.
func missingVideoError(ctx *fiber.Ctx) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return detection.ErrNoVideo
	}
	if _, ok := form.Value["video"]; ok {
		return detection.ErrEmptyFilename
	}
	return detection.ErrNoVideo
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return detection.ErrNoVideo
	case errors.Is(err, utils.ErrEmptyFilename):
		return detection.ErrEmptyFilename
	case errors.Is(err, utils.ErrEmptyFile):
		return detection.ErrEmptyFile
	case errors.Is(err, utils.ErrFileTooLarge):
		return detection.ErrFileTooLarge
	default:
		return err
	}
}

func (h *DetectionHandler) HandleListAnalyses(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	var query detection.HistoryQuery
	if err := ctx.QueryParser(&query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(query); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.detectionService.ListAnalyses(c, user.ID, query)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_analyses")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *DetectionHandler) HandleGetAnalysis(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	res, err := h.detectionService.GetAnalysis(c, user.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_analysis")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *DetectionHandler) HandleAdvice(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	res, err := h.detectionService.GenerateAdvice(c, user.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "generate_advice")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}
