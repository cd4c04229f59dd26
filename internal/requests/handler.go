package requests

import (
	"StudentRequests/internal/auth"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RequestHandler struct {
	service *RequestService
	logger  *zap.Logger
}

func NewRequestHandler(service *RequestService, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{service: service, logger: logger.Named("requests.http")}
}

func (h *RequestHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrInvalidAction), errors.Is(err, ErrEmptyRequest):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrRequestNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrIllegalTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("request handling failed", zap.String("path", c.Path()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

func (h *RequestHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func currentUser(c echo.Context) (*auth.User, error) {
	user := auth.UserFromContext(c)
	if user == nil {
		return nil, c.JSON(http.StatusUnauthorized, map[string]string{"error": auth.ErrSessionExpired.Error()})
	}
	return user, nil
}

func (h *RequestHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var req SubmitRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	owner := Owner{UserID: user.UserID, Name: user.Name, Email: user.Email, Phone: user.Phone}
	created, err := h.service.Submit(c.Request().Context(), owner, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *RequestHandler) History(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	history, err := h.service.History(c.Request().Context(), user.UserID, c.QueryParam("semester"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

func (h *RequestHandler) Cancel(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var req CancelRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request ID"})
	}
	if err := h.service.Cancel(c.Request().Context(), id, user.UserID); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "We have cancelled your request, thank you."})
}

func (h *RequestHandler) Dashboard(c echo.Context) error {
	counts, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *RequestHandler) Queue(c echo.Context) error {
	category, err := ParseCategory(c.Param("category"))
	if err != nil {
		return h.fail(c, err)
	}
	pending, err := h.service.Queue(c.Request().Context(), category)
	if err != nil {
		return h.fail(c, err)
	}
	resp := map[string]interface{}{"category": category, "requests": pending}
	if session := auth.SessionFromContext(c); session != nil {
		resp["csrf_token"] = session.CSRFToken
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) Act(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var req ActRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	id, err := primitive.ObjectIDFromHex(req.ID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request ID"})
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		return h.fail(c, err)
	}
	updated, err := h.service.Act(c.Request().Context(), id, action, req.Note, user.UserID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "We have submitted your action, thank you.",
		"request": updated,
	})
}

func (h *RequestHandler) Random(c echo.Context) error {
	picked, err := h.service.PickRandomPending(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	if picked == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"request": nil, "message": "No pending requests"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"request": picked})
}
