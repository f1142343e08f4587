package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
)

// LoginHandler exchanges a username and password for an access token.
type LoginHandler struct {
	AuthService *service.AuthService
	Proxies     *httpx.ClientIPResolver
}

// ServeHTTP handles POST /login
//
//	@Summary		Log in
//	@Description	Checks the username and password (and the one-time code once TOTP is enabled) and returns a bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.LoginRequest							true	"Credentials"
//	@Success		200		{object}	adminsdk.Result{data=adminsdk.TokenResponse}	"Token issued"
//	@Failure		400		{object}	adminsdk.Result									"Malformed request"
//	@Failure		401		{object}	adminsdk.Result									"Bad credentials, disabled account or missing/invalid one-time code"
//	@Failure		429		{object}	adminsdk.Result									"Too many attempts"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		adminsdk.ErrBadCredentials.WriteError(w)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		OTPCode:   req.OTPCode,
		IP:        h.Proxies.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusOK, tokenResponse(res))
}

func tokenResponse(res service.TokenResult) adminsdk.TokenResponse {
	return adminsdk.TokenResponse{
		Token:     res.Token,
		TokenHead: adminsdk.TokenHead,
		ExpiresIn: int64(res.ExpiresIn.Seconds()),
	}
}
