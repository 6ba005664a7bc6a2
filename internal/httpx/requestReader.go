package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds every JSON request body.
const MaxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

func ReadBody[InitType any](r http.Request) (InitType, error) {
	var body InitType
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return body, ErrEmptyBody
		}
		return body, fmt.Errorf("invalid JSON body: %w", err)
	}
	return body, nil
}
