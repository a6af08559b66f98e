package handler

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"costedge/backend/internal/service"
	pkgerrors "costedge/backend/pkg/errors"
	"costedge/backend/pkg/response"
)

// codeInvalidParams business code of every request validation failure.
// Module codes live next to their handlers.
const codeInvalidParams = 10001

var tagNamesOnce sync.Once

// UseJSONFieldNames makes gin's validator report json field names, so binding
// errors name the same fields clients send.
func UseJSONFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			tag := f.Tag.Get("json")
			if tag == "" {
				tag = f.Tag.Get("form")
			}
			name := strings.SplitN(tag, ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// CallerID user id injected by JWTAuth. Empty when auth is disabled.
func CallerID(c *gin.Context) string {
	return c.GetString("user_id")
}

// parseID reads the :id path parameter and writes a 400 when it is malformed.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, codeInvalidParams, "invalid id")
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates a JSON body, writing the 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	return bindWith(c, c.ShouldBindJSON(dst))
}

// bindQuery binds and validates query parameters, writing the 400 on failure.
func bindQuery(c *gin.Context, dst interface{}) bool {
	return bindWith(c, c.ShouldBindQuery(dst))
}

func bindWith(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.ValidationFailed(c, codeInvalidParams, service.FromValidator(verrs).Fields)
		return false
	}
	response.BadRequest(c, codeInvalidParams, "invalid request body")
	return false
}

// decodeBatch decodes a JSON array without validating its items; the
// services validate each item on its own.
func decodeBatch(c *gin.Context, dst interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		response.BadRequest(c, codeInvalidParams, "request body must be a JSON array")
		return false
	}
	return true
}

// writeValidation answers a field validation failure. It reports false for
// any other error.
func writeValidation(c *gin.Context, err error) bool {
	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		response.ValidationFailed(c, codeInvalidParams, ve.Fields)
		return true
	}
	return false
}
