package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
)

// AccountHandler serves the authenticated admin's own account.
type AccountHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

// HandleRefresh handles POST /v1/admin/token/refresh
//
//	@Summary		Refresh token
//	@Description	Returns the presented token while it is younger than the refresh window, otherwise a new token for the same admin.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	adminsdk.Result{data=adminsdk.TokenResponse}	"Token"
//	@Failure		401	{object}	adminsdk.Result									"Not logged in or token expired"
//	@Router			/v1/admin/token/refresh [post].
func (h *AccountHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	res, err := h.AuthService.Refresh(r.Context(), p.Claims, p.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusOK, tokenResponse(res))
}

// HandleInfo handles GET /v1/admin/info
//
//	@Summary		Current admin
//	@Description	Returns the authenticated admin and the authorities it holds.
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	adminsdk.Result{data=adminsdk.AdminInfo}	"Admin"
//	@Failure		401	{object}	adminsdk.Result								"Not logged in or token expired"
//	@Router			/v1/admin/info [get].
func (h *AccountHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusOK, adminsdk.AdminInfo{
		ID:          user.ID,
		Username:    user.Username,
		Nickname:    user.Nickname,
		Email:       user.Email,
		Authorities: p.Authorities,
		TOTPEnabled: user.TOTPEnabled(),
		LoginAt:     user.LoginAt,
		MFA:         p.Claims.HasAMR(jwtx.AMROTP),
	})
}

// HandleChangePassword handles POST /v1/admin/password
//
//	@Summary		Change password
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.ChangePasswordRequest	true	"Old and new password"
//	@Success		200		{object}	adminsdk.Result					"Password changed"
//	@Failure		400		{object}	adminsdk.Result					"Invalid new password"
//	@Failure		401		{object}	adminsdk.Result					"Wrong current password"
//	@Router			/v1/admin/password [post].
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req adminsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), p.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusOK, nil)
}
