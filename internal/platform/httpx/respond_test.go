package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsWrappedSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("authz: %w", ErrUnauthorized), http.StatusUnauthorized, CodeUnauthorized},
		{fmt.Errorf("authz: %w", ErrForbidden), http.StatusForbidden, CodeForbidden},
		{fmt.Errorf("bulk: identifiers required: %w", ErrValidation), http.StatusBadRequest, CodeValidation},
		{fmt.Errorf("bulk: %w", ErrPersistence), http.StatusInternalServerError, CodePersistence},
		{fmt.Errorf("auth: %w", ErrSessionStore), http.StatusInternalServerError, CodeSessionStore},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)

		require.Equal(t, tc.status, rr.Code, tc.err.Error())
		var body ErrorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
		assert.NotEmpty(t, body.Error)
	}
}

func TestRespondErrorHidesServerFaultDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("bulk: dial tcp 10.0.0.1:5432: %w", ErrPersistence))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Error)
}
