package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/gacha"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func okJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Code: status, Msg: msg})
}

// drawStatus maps a pack or catalog failure to an HTTP status and message.
func drawStatus(err error) (int, string) {
	var nf *catalog.NotFoundError
	switch {
	case errors.Is(err, gacha.ErrEmptyPool):
		return http.StatusNotFound, "pack unavailable"
	case errors.As(err, &nf):
		return http.StatusNotFound, "set not found"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "catalog timeout"
	default:
		return http.StatusBadGateway, "catalog unavailable"
	}
}
