// Package echoutil wires request logging into the daemon's echo server.
package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

var levels = map[string]log.Lvl{
	"debug": log.DEBUG,
	"info":  log.INFO,
	"warn":  log.WARN,
	"error": log.ERROR,
	"off":   log.OFF,
}

// SetLevel maps loglevel onto e's logger. Unknown names fall back to warn,
// loudly; the empty name falls back silently.
func SetLevel(e *echo.Echo, loglevel string) {
	name := strings.ToLower(loglevel)
	if lv, ok := levels[name]; ok {
		e.Logger.SetLevel(lv)
		return
	}
	e.Logger.SetLevel(log.WARN)
	if name != "" {
		e.Logger.Warnf("unknown loglevel %q; falling back to warn", loglevel)
	}
}

// LogHandlerFunc logs one line on the way into next and one on the way out,
// the latter carrying the status, the elapsed time and the handler error.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		begin := time.Now()
		c.Logger().Infof("< request @[%s] %s %s", begin, meth, path)

		var err error
		defer func() {
			end := time.Now()
			c.Logger().Infof(
				"> response @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
				end, c.Response().Status, begin, meth, path, end.Sub(begin), err,
			)
		}()

		err = next(c)
		return err
	}
}
