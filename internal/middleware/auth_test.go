package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminKeyAuth(t *testing.T) {
	var seen string
	h := AdminKeyAuth(map[string]string{"ops": "secret", "blank": ""})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetOperatorFromContext(r.Context())
		}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"bearer key", "Bearer secret", http.StatusOK},
		{"bare key", "secret", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/admin/analyses", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "ops", seen)
			}
		})
	}
}
