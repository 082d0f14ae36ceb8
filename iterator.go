package graw

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/jamesprial/graw/internal"
	"github.com/jamesprial/graw/pkg/types"
)

// ErrIteratorDone is returned by Next after the last item.
var ErrIteratorDone = internal.ErrIteratorDone

// ListingFunc fetches one page of a submissions listing, e.g. Subreddit.Hot.
type ListingFunc func(ctx context.Context, cursor *types.ListingCursor) (*types.Submissions, error)

// PostIterator walks a submissions listing post by post, chaining each
// page's "after" into the next request.
//
// Pages are fetched as fast as Next is called. Pass a limiter with
// WithLimiter to space them out; the client itself never throttles.
//
//	it := sub.HotIterator(ctx, types.ListingCursor{Limit: 100}).
//		WithLimiter(rate.NewLimiter(rate.Every(time.Second), 1))
//	for it.HasNext() {
//		post, err := it.Next()
//		if errors.Is(err, graw.ErrIteratorDone) {
//			break
//		}
//		...
//	}
type PostIterator struct {
	ctx    context.Context
	cursor types.ListingCursor
	fetch  ListingFunc
	inner  *internal.PageIterator[types.Child[types.Post]]
	err    error
}

// NewPostIterator creates an iterator over any submissions listing.
func NewPostIterator(ctx context.Context, cursor types.ListingCursor, fetch ListingFunc) *PostIterator {
	return newPostIterator(ctx, cursor, fetch)
}

func newPostIterator(ctx context.Context, cursor types.ListingCursor, fetch ListingFunc) *PostIterator {
	it := &PostIterator{ctx: ctx, cursor: cursor, fetch: fetch}
	it.reset(nil)
	return it
}

func (it *PostIterator) reset(limiter *rate.Limiter) {
	fetch := it.fetch
	it.inner = internal.NewPageIterator(it.ctx, it.cursor, limiter,
		func(ctx context.Context, cursor types.ListingCursor) (*types.Submissions, error) {
			return fetch(ctx, &cursor)
		})
}

// WithLimiter paces page fetches through limiter. Call it before the first
// Next.
func (it *PostIterator) WithLimiter(limiter *rate.Limiter) *PostIterator {
	it.reset(limiter)
	return it
}

// HasNext returns true if there may be more posts.
func (it *PostIterator) HasNext() bool {
	return it.inner.HasNext()
}

// Next returns the next post. It returns ErrIteratorDone after the last one
// and keeps returning the first fetch error after a failure.
func (it *PostIterator) Next() (*types.Post, error) {
	child, err := it.inner.Next()
	if err != nil {
		if !errors.Is(err, ErrIteratorDone) {
			it.err = err
		}
		return nil, err
	}
	return &child.Data, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *PostIterator) Err() error {
	return it.err
}

// Pages returns the number of pages fetched so far.
func (it *PostIterator) Pages() int {
	return it.inner.Pages()
}

// Collect drains the iterator into a slice, stopping at max posts when max
// is positive.
func (it *PostIterator) Collect(max int) ([]*types.Post, error) {
	var posts []*types.Post
	for it.HasNext() {
		if max > 0 && len(posts) >= max {
			break
		}
		post, err := it.Next()
		if errors.Is(err, ErrIteratorDone) {
			break
		}
		if err != nil {
			return posts, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}
