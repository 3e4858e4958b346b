package graph

import (
	"context"

	"github.com/graphql-go/graphql"
)

func NewSchema(r *Resolver) (graphql.Schema, error) {
	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	nonNullString := func() *graphql.ArgumentConfig {
		return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	}
	books := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(bookType)))
	activities := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(activityType)))

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"books": &graphql.Field{
				Type:    books,
				Resolve: r.booksQuery,
			},
			"book": &graphql.Field{
				Type:    bookType,
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: r.bookQuery,
			},
			"activities": &graphql.Field{
				Type:        activities,
				Description: "Most recent 100 activities, newest first.",
				Resolve:     r.activitiesQuery,
			},
			"myActivities": &graphql.Field{
				Type:        activities,
				Description: "All activities of the caller, newest first.",
				Resolve:     r.myActivitiesQuery,
			},
			"activitiesByUser": &graphql.Field{
				Type:    activities,
				Args:    graphql.FieldConfigArgument{"userId": nonNullString()},
				Resolve: r.activitiesByUserQuery,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createBook": &graphql.Field{
				Type: graphql.NewNonNull(bookType),
				Args: graphql.FieldConfigArgument{
					"name":        nonNullString(),
					"description": nonNullString(),
				},
				Resolve: r.createBook,
			},
			"updateBook": &graphql.Field{
				Type: graphql.NewNonNull(bookType),
				Args: graphql.FieldConfigArgument{
					"id":          idArg,
					"name":        nonNullString(),
					"description": nonNullString(),
				},
				Resolve: r.updateBook,
			},
			"deleteBook": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: r.deleteBook,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

// Execute runs one GraphQL operation. Mutation fields run serially, in document order.
func Execute(ctx context.Context, schema graphql.Schema, query, operationName string, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		OperationName:  operationName,
		VariableValues: variables,
		Context:        ctx,
	})
}
