package graph

import (
	"context"
	"fmt"

	"github.com/book-catalog/backend/internal/auth"
	"github.com/book-catalog/backend/internal/models"
	"github.com/book-catalog/backend/internal/services"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type Resolver struct {
	books        *services.BookService
	activities   *services.ActivityService
	log          *zap.Logger
	exposeErrors bool
}

// NewResolver builds the resolver set. exposeErrors puts internal error text into responses (development only).
func NewResolver(books *services.BookService, activities *services.ActivityService, log *zap.Logger, exposeErrors bool) *Resolver {
	return &Resolver{books: books, activities: activities, log: log, exposeErrors: exposeErrors}
}

func actor(ctx context.Context) (models.Actor, error) {
	a, ok := auth.ActorFrom(ctx)
	if !ok {
		return models.Actor{}, auth.ErrUnauthenticated
	}
	return a, nil
}

func intArg(p graphql.ResolveParams, name string) (int64, error) {
	v, ok := p.Args[name].(int)
	if !ok {
		return 0, fmt.Errorf("argument %s: expected Int", name)
	}
	return int64(v), nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func (r *Resolver) booksQuery(p graphql.ResolveParams) (interface{}, error) {
	if _, err := actor(p.Context); err != nil {
		return nil, r.mapError("books", err)
	}
	books, err := r.books.List(p.Context)
	return books, r.mapError("books", err)
}

func (r *Resolver) bookQuery(p graphql.ResolveParams) (interface{}, error) {
	if _, err := actor(p.Context); err != nil {
		return nil, r.mapError("book", err)
	}
	id, err := intArg(p, "id")
	if err != nil {
		return nil, err
	}
	b, err := r.books.Get(p.Context, id)
	if err != nil {
		return nil, r.mapError("book", err)
	}
	if b == nil {
		return nil, nil
	}
	return b, nil
}

func (r *Resolver) activitiesQuery(p graphql.ResolveParams) (interface{}, error) {
	if _, err := actor(p.Context); err != nil {
		return nil, r.mapError("activities", err)
	}
	acts, err := r.activities.Recent(p.Context)
	return acts, r.mapError("activities", err)
}

func (r *Resolver) myActivitiesQuery(p graphql.ResolveParams) (interface{}, error) {
	a, err := actor(p.Context)
	if err != nil {
		return nil, r.mapError("myActivities", err)
	}
	acts, err := r.activities.ByUser(p.Context, a.UserID)
	return acts, r.mapError("myActivities", err)
}

func (r *Resolver) activitiesByUserQuery(p graphql.ResolveParams) (interface{}, error) {
	if _, err := actor(p.Context); err != nil {
		return nil, r.mapError("activitiesByUser", err)
	}
	acts, err := r.activities.ByUser(p.Context, stringArg(p, "userId"))
	return acts, r.mapError("activitiesByUser", err)
}

func (r *Resolver) createBook(p graphql.ResolveParams) (interface{}, error) {
	a, err := actor(p.Context)
	if err != nil {
		return nil, r.mapError("createBook", err)
	}
	b, err := r.books.Create(p.Context, a, stringArg(p, "name"), stringArg(p, "description"))
	if err != nil {
		return nil, r.mapError("createBook", err)
	}
	return b, nil
}

func (r *Resolver) updateBook(p graphql.ResolveParams) (interface{}, error) {
	a, err := actor(p.Context)
	if err != nil {
		return nil, r.mapError("updateBook", err)
	}
	id, err := intArg(p, "id")
	if err != nil {
		return nil, err
	}
	b, err := r.books.Update(p.Context, a, id, stringArg(p, "name"), stringArg(p, "description"))
	if err != nil {
		return nil, r.mapError("updateBook", err)
	}
	return b, nil
}

func (r *Resolver) deleteBook(p graphql.ResolveParams) (interface{}, error) {
	a, err := actor(p.Context)
	if err != nil {
		return nil, r.mapError("deleteBook", err)
	}
	id, err := intArg(p, "id")
	if err != nil {
		return nil, err
	}
	removed, err := r.books.Delete(p.Context, a, id)
	if err != nil {
		return nil, r.mapError("deleteBook", err)
	}
	return removed, nil
}
