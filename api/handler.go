package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiotext/errors"
	"github.com/kbukum/audiotext/job"
	"github.com/kbukum/audiotext/logger"
	"github.com/kbukum/audiotext/server"
	"github.com/kbukum/audiotext/server/middleware"
	"github.com/kbukum/audiotext/validation"
	"github.com/kbukum/audiotext/web"
)

const (
	formFieldAudio    = "audio"
	formFieldLanguage = "language"
)

// busyBody is the exact 429 payload clients match on.
var busyBody = gin.H{"detail": "busy"}

// Handler serves the job endpoints.
type Handler struct {
	jobs *job.Controller
	log  *logger.Logger
}

// NewHandler creates a Handler for jobs.
func NewHandler(jobs *job.Controller, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{jobs: jobs, log: log.WithComponent("api")}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.POST("/transcribe", h.Transcribe)
	r.POST("/stop", h.Stop)
	r.GET("/status", h.Status)
}

// Index serves the landing page.
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML())
}

// Transcribe accepts a multipart upload in field "audio" with an optional
// "language" hint and returns the recognized text.
func (h *Handler) Transcribe(c *gin.Context) {
	// Reject before reading the body when the slot is visibly taken. The
	// controller makes the authoritative admission decision.
	if h.jobs.Gate().Active() {
		h.busy(c)
		return
	}

	fh, err := c.FormFile(formFieldAudio)
	if err != nil {
		server.RespondWithError(c, uploadError(err))
		return
	}

	language := c.PostForm(formFieldLanguage)
	if appErr := validation.New().Language(formFieldLanguage, language).Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}

	f, err := fh.Open()
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	defer f.Close()

	res, err := h.jobs.Transcribe(c.Request.Context(), job.Upload{
		Filename: fh.Filename,
		Body:     f,
		Language: language,
	})
	if err != nil {
		if stderrors.Is(err, job.ErrBusy) {
			h.busy(c)
			return
		}
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// Stop requests cancellation of the active job. It always answers 200.
func (h *Handler) Stop(c *gin.Context) {
	outcome := h.jobs.Gate().Stop()
	h.log.Info("stop requested", logger.Fields(
		"outcome", string(outcome),
		logger.FieldRequestID, middleware.GetRequestID(c.Request.Context()),
	))
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

// Status reports the gate state.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobs.Gate().Status())
}

func (h *Handler) busy(c *gin.Context) {
	h.log.Debug("transcribe rejected, job active", logger.Fields(
		logger.FieldRequestID, middleware.GetRequestID(c.Request.Context()),
	))
	c.JSON(http.StatusTooManyRequests, busyBody)
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.PayloadTooLarge(tooLarge.Limit)
	case stderrors.Is(err, http.ErrMissingFile), stderrors.Is(err, http.ErrNotMultipart):
		return errors.MissingField(formFieldAudio)
	default:
		return errors.InvalidInput(formFieldAudio, err.Error())
	}
}
