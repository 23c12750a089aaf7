package profiles

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openmeet/backend/internal/models"
	"github.com/openmeet/backend/pkg/response"
)

// UserGetter is the slice of the user repository the handler needs.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Handler exposes the profile repository over the management API.
type Handler struct {
	repo   *Repository
	users  UserGetter
	logger *zap.Logger
}

// NewHandler creates a profiles handler.
func NewHandler(repo *Repository, users UserGetter, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, logger: logger}
}

// Create handles POST /api/profiles.
func (h *Handler) Create(c *gin.Context) {
	var body CreateInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body")
		return
	}
	if body.UserID <= 0 || body.OrganizationID <= 0 || body.Email == "" {
		response.BadRequest(c, "user_id, organization_id and email required")
		return
	}
	p, err := h.repo.Create(c.Request.Context(), body)
	if err != nil {
		if errors.Is(err, ErrProfileExists) {
			response.Conflict(c, "profile already exists for this user and organization")
			return
		}
		h.logger.Error("create profile", zap.Error(err))
		response.Internal(c, "failed to create profile")
		return
	}
	response.Created(c, p)
}

// Upsert handles PUT /api/profiles.
func (h *Handler) Upsert(c *gin.Context) {
	var body UpsertInput
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body")
		return
	}
	if body.Create.UserID <= 0 || body.Create.OrganizationID <= 0 || body.Create.Email == "" {
		response.BadRequest(c, "create.user_id, create.organization_id and create.email required")
		return
	}
	p, err := h.repo.Upsert(c.Request.Context(), body)
	if err != nil {
		h.logger.Error("upsert profile", zap.Error(err))
		response.Internal(c, "failed to upsert profile")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /api/profiles/:userID/:orgID. Idempotent.
func (h *Handler) Delete(c *gin.Context) {
	userID, err1 := strconv.ParseInt(c.Param("userID"), 10, 64)
	orgID, err2 := strconv.ParseInt(c.Param("orgID"), 10, 64)
	if err1 != nil || err2 != nil {
		response.BadRequest(c, "invalid user or organization id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, orgID); err != nil {
		h.logger.Error("delete profile", zap.Error(err))
		response.Internal(c, "failed to delete profile")
		return
	}
	response.NoContent(c)
}

// DeleteForUser handles DELETE /api/users/:id/profiles. Idempotent.
func (h *Handler) DeleteForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.DeleteMany(c.Request.Context(), []int64{userID}); err != nil {
		h.logger.Error("delete profiles for user", zap.Error(err))
		response.Internal(c, "failed to delete profiles")
		return
	}
	response.NoContent(c)
}

// ListForUser handles GET /api/users/:id/profiles. Never returns an empty list
// for an existing user; users without memberships get their personal profile.
func (h *Handler) ListForUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("load user", zap.Int64("user_id", userID), zap.Error(err))
		response.Internal(c, "failed to load user")
		return
	}
	if user == nil {
		response.NotFound(c, "user not found")
		return
	}
	list, err := h.repo.FindAllProfilesForUserIncludingMovedUser(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("list profiles", zap.Int64("user_id", userID), zap.Error(err))
		response.Internal(c, "failed to load profiles")
		return
	}
	response.OK(c, list)
}

// ListForOrg handles GET /api/organizations/:id/profiles.
func (h *Handler) ListForOrg(c *gin.Context) {
	orgID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.FindManyForOrg(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list org profiles", zap.Int64("organization_id", orgID), zap.Error(err))
		response.Internal(c, "failed to load profiles")
		return
	}
	response.OK(c, list)
}

// GetByUpID handles GET /api/profiles/up/:upId.
func (h *Handler) GetByUpID(c *gin.Context) {
	upID := c.Param("upId")
	if _, err := ParseUpID(upID); err != nil {
		response.BadRequest(c, "invalid up_id")
		return
	}
	identity, err := h.repo.FindByUpID(c.Request.Context(), upID)
	if err != nil {
		h.logger.Error("find profile by up_id", zap.String("up_id", upID), zap.Error(err))
		response.Internal(c, "failed to load profile")
		return
	}
	if identity == nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.OK(c, identity)
}
