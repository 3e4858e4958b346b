package graph

import (
	"github.com/book-catalog/backend/internal/models"
	"github.com/graphql-go/graphql"
)

// GraphQL object types. Field mapping is written out here instead of being derived from struct tags.

func asBook(src any) *models.Book {
	switch b := src.(type) {
	case *models.Book:
		return b
	case models.Book:
		return &b
	}
	return nil
}

func asActivity(src any) *models.Activity {
	switch a := src.(type) {
	case *models.Activity:
		return a
	case models.Activity:
		return &a
	}
	return nil
}

func bookField(typ graphql.Output, get func(b *models.Book) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if b := asBook(p.Source); b != nil {
				return get(b), nil
			}
			return nil, nil
		},
	}
}

func activityField(typ graphql.Output, get func(a *models.Activity) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if a := asActivity(p.Source); a != nil {
				return get(a), nil
			}
			return nil, nil
		},
	}
}

var bookType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Book",
	Fields: graphql.Fields{
		"id":          bookField(graphql.NewNonNull(graphql.Int), func(b *models.Book) any { return int(b.ID) }),
		"name":        bookField(graphql.NewNonNull(graphql.String), func(b *models.Book) any { return b.Name }),
		"description": bookField(graphql.NewNonNull(graphql.String), func(b *models.Book) any { return b.Description }),
	},
})

var activityType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Activity",
	Description: "Immutable audit record of a mutation.",
	Fields: graphql.Fields{
		"id":         activityField(graphql.NewNonNull(graphql.Int), func(a *models.Activity) any { return int(a.ID) }),
		"action":     activityField(graphql.NewNonNull(graphql.String), func(a *models.Activity) any { return a.Action }),
		"entityType": activityField(graphql.NewNonNull(graphql.String), func(a *models.Activity) any { return a.EntityType }),
		"entityId": activityField(graphql.Int, func(a *models.Activity) any {
			if a.EntityID == nil {
				return nil
			}
			return int(*a.EntityID)
		}),
		"details": activityField(graphql.String, func(a *models.Activity) any {
			if a.Details == nil {
				return nil
			}
			return *a.Details
		}),
		"userId":    activityField(graphql.NewNonNull(graphql.String), func(a *models.Activity) any { return a.UserID }),
		"userEmail": activityField(graphql.NewNonNull(graphql.String), func(a *models.Activity) any { return a.UserEmail }),
		"timestamp": activityField(graphql.NewNonNull(graphql.DateTime), func(a *models.Activity) any { return a.Timestamp }),
	},
})
