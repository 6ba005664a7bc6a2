package httptransport

import (
	"net/http"

	"eventsite/internal/httpx"
	"eventsite/internal/interpolate"
)

// Interpolate previews {{variable}} substitution for the visual builder.
// A request carries either text or props.
func Interpolate(w http.ResponseWriter, r *http.Request) {
	req, err := httpx.ReadBody[InterpolateRequest](*r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	if req.Text == nil && req.Props == nil {
		httpx.Error(w, http.StatusBadRequest, "text or props is required")
		return
	}

	var resp InterpolateResponse
	if req.Text != nil {
		text := interpolate.Interpolate(*req.Text, req.Data)
		resp.Text = &text
		resp.Variables = interpolate.ExtractVariables(*req.Text)
	} else {
		resp.Props = interpolate.Props(req.Props, req.Data)
		resp.Variables = interpolate.PropsVariables(req.Props)
	}
	if resp.Variables == nil {
		resp.Variables = []string{}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
