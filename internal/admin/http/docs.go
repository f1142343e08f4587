package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
	"github.com/swaggo/swag"
)

// APIDocsHandler serves the registered swagger document.
func APIDocsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			adminsdk.ErrNotFound.WithMessage("api docs not registered").WriteError(w)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(doc))
	}
}
