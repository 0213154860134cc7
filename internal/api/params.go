package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/service"
)

// pathID parses the :id route parameter, answering 404 when it is not a
// uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		badRequest(c, name, "must be a positive integer")
		return 0, false
	}
	return n, true
}

// pageParams reads the page and limit query parameters.
func pageParams(c *gin.Context, defaultLimit int) (service.Page, bool) {
	number, ok := queryInt(c, "page")
	if !ok {
		return service.Page{}, false
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return service.Page{}, false
	}
	return service.Page{Number: number, Limit: limit}.Normalize(defaultLimit), true
}

// queryFlag reads a 0/1 or true/false query parameter.
func queryFlag(c *gin.Context, name string) bool {
	b, err := strconv.ParseBool(c.Query(name))
	return err == nil && b
}

// pageLink returns the request URL with its page parameter set to number.
func pageLink(c *gin.Context, number int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	u.RawQuery = q.Encode()
	link := (&url.URL{Path: u.Path, RawQuery: u.RawQuery}).String()
	return &link
}
