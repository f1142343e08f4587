package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
)

// JWKSHandler publishes the EdDSA verification keys. HS512 secrets are
// never listed.
//
//	@Summary		Get JWKS
//	@Description	Returns the public keys that verify EdDSA admin tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
