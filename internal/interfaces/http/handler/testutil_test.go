package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser simulates the JWT middleware for an authenticated request
func asUser(userID uuid.UUID, superuser bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Set(middleware.JWTSuperuserKey, superuser)
		c.Next()
	}
}

// newTestRouter builds a router with the identity middleware and the
// handler's routes mounted under /api/v1
func newTestRouter(userID uuid.UUID, superuser bool, registrars ...interface {
	RegisterRoutes(rg *gin.RouterGroup)
}) *gin.Engine {
	router := gin.New()
	router.Use(asUser(userID, superuser))
	api := router.Group("/api/v1")
	for _, registrar := range registrars {
		registrar.RegisterRoutes(api)
	}
	return router
}

// performJSON issues a request with an optional JSON body
func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(rec *httptest.ResponseRecorder, out any) error {
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, out)
}
