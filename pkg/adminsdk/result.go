package adminsdk

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
)

// Result is the response envelope shared by every endpoint.
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// rawResult is Result with its payload left undecoded.
type rawResult struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Result {
	return Result{Code: http.StatusOK, Message: "ok", Data: data}
}

// WriteOK writes data in a success envelope with the given status.
func WriteOK(w http.ResponseWriter, status int, data any) {
	res := OK(data)
	res.Code = status
	httpx.WriteJSON(w, status, res)
}
