package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
)

// TOTPHandler manages the second factor of the authenticated admin.
type TOTPHandler struct {
	TOTPService *service.TOTPService
}

// HandleEnroll handles POST /v1/admin/totp/enroll
//
//	@Summary		Enroll in TOTP
//	@Description	Generates a TOTP secret. The second factor is enforced once a code has been verified.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	adminsdk.Result{data=adminsdk.TOTPEnrollResponse}	"Secret and otpauth URL"
//	@Failure		401	{object}	adminsdk.Result										"Not logged in or token expired"
//	@Failure		409	{object}	adminsdk.Result										"TOTP already enabled"
//	@Router			/v1/admin/totp/enroll [post].
func (h *TOTPHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	enrollment, err := h.TOTPService.Enroll(r.Context(), p.UserID, p.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusOK, adminsdk.TOTPEnrollResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
	})
}

// HandleVerify handles POST /v1/admin/totp/verify
//
//	@Summary		Verify TOTP
//	@Description	Checks a code against the pending secret and enables the second factor.
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.TOTPCodeRequest	true	"Current code"
//	@Success		200		{object}	adminsdk.Result				"TOTP enabled"
//	@Failure		400		{object}	adminsdk.Result				"Not enrolled"
//	@Failure		401		{object}	adminsdk.Result				"Invalid code"
//	@Router			/v1/admin/totp/verify [post].
func (h *TOTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req adminsdk.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.TOTPService.Verify(r.Context(), p.UserID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	adminsdk.WriteOK(w, http.StatusOK, nil)
}

// HandleDisable handles DELETE /v1/admin/totp
//
//	@Summary		Disable TOTP
//	@Tags			TOTP
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.TOTPCodeRequest	true	"Current code"
//	@Success		200		{object}	adminsdk.Result				"TOTP disabled"
//	@Failure		400		{object}	adminsdk.Result				"TOTP not enabled"
//	@Failure		401		{object}	adminsdk.Result				"Invalid code"
//	@Router			/v1/admin/totp [delete].
func (h *TOTPHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req adminsdk.TOTPCodeRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.TOTPService.Disable(r.Context(), p.UserID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	adminsdk.WriteOK(w, http.StatusOK, nil)
}
