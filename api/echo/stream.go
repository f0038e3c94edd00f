package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aredu/arcportal/realtime"
)

type streamApi struct {
	hub *realtime.Hub
}

func registerStreamAPI(g *echo.Group, jwt echo.MiddlewareFunc, hub *realtime.Hub) {
	a := streamApi{hub: hub}

	g.GET("/stream", a.stream, jwt)
}

// stream bridges the hub onto a server-sent-events response. The optional
// "topics" query parameter is a comma-separated subset; absent means all.
// The subscription is torn down when the client goes away, and a closed hub
// ends the stream immediately instead of hanging the client.
func (api *streamApi) stream(c echo.Context) error {
	var topics []string
	if raw := c.QueryParam("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	sub := api.hub.Subscribe(topics...)
	defer sub.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", e.Topic, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
