package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/geeky-hamster/Quizme/core"
)

const orderingParam = "ordering"

// bindOrdering reads `?ordering=name,-created_at`. A leading "-" sorts descending, "+" or nothing ascending.
// Repeated fields keep their first occurrence. Services filter out unknown fields.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	raw := strings.TrimSpace(ctx.QueryParam(orderingParam))
	if raw == "" {
		return nil
	}

	var (
		orderings []core.DBOrdering
		seen      = make(map[string]bool)
	)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		ascending := true
		switch {
		case strings.HasPrefix(field, "-"):
			ascending = false
			field = field[1:]
		case strings.HasPrefix(field, "+"):
			field = field[1:]
		}
		key := strings.ToLower(field)
		if field == "" || seen[key] {
			continue
		}
		seen[key] = true
		orderings = append(orderings, core.DBOrdering{Field: field, Ascending: ascending})
	}
	return orderings
}
