package handlers

import (
	"github.com/book-catalog/backend/internal/graph"
	"github.com/book-catalog/backend/internal/http/dto"
	"github.com/book-catalog/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type GraphQLHandler struct {
	schema     graphql.Schema
	playground bool
	log        *zap.Logger
}

func NewGraphQLHandler(schema graphql.Schema, playground bool, log *zap.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, playground: playground, log: log}
}

func (h *GraphQLHandler) Query(c *fiber.Ctx) error {
	var req dto.GraphQLRequest
	if err := c.BodyParser(&req); err != nil {
		return badGraphQLRequest(c, "invalid request body")
	}
	if req.Query == "" {
		return badGraphQLRequest(c, "query is required")
	}

	result := graph.Execute(c.UserContext(), h.schema, req.Query, req.OperationName, req.Variables)
	if result.HasErrors() {
		h.log.Debug("graphql operation returned errors",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(result.Errors)),
		)
	}
	return c.JSON(result)
}

func (h *GraphQLHandler) Playground(c *fiber.Ctx) error {
	if !h.playground {
		return fiber.ErrNotFound
	}
	c.Type("html", "utf-8")
	return c.SendString(playgroundHTML)
}

func badGraphQLRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.GraphQLResponse{
		Errors: []dto.GraphQLError{{
			Message: msg,
			Extensions: map[string]any{
				"code":       "BAD_REQUEST",
				"request_id": middleware.GetRequestID(c),
			},
		}},
	})
}

// GraphiQL loaded from a CDN; the page sends whatever Authorization header the user types in.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Books GraphQL</title>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
</head>
<body style="margin:0">
  <div id="graphiql" style="height:100vh"></div>
  <script crossorigin src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: window.location.pathname });
    ReactDOM.createRoot(document.getElementById('graphiql')).render(
      React.createElement(GraphiQL, { fetcher, headerEditorEnabled: true })
    );
  </script>
</body>
</html>`
