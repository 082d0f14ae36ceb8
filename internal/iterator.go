package internal

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/jamesprial/graw/pkg/types"
)

// ErrIteratorDone is returned by Next once every page has been consumed.
var ErrIteratorDone = errors.New("no more items available")

// PageFetcher loads the listing page that cursor points at.
type PageFetcher[T any] func(ctx context.Context, cursor types.ListingCursor) (*types.Listing[T], error)

// PageIterator walks a listing item by item, fetching the next page with the
// previous page's "after" fullname when the buffer runs out.
type PageIterator[T any] struct {
	ctx       context.Context
	fetch     PageFetcher[T]
	limiter   *rate.Limiter
	cursor    types.ListingCursor
	buffer    []T
	bufferIdx int
	hasMore   bool
	pages     int
	err       error
}

// NewPageIterator creates an iterator starting at cursor. A limit above
// Reddit's 100 page size is lowered to 100; a zero limit stays absent so
// Reddit picks its default page size. A nil limiter fetches pages as fast as
// the caller consumes them.
func NewPageIterator[T any](ctx context.Context, cursor types.ListingCursor, limiter *rate.Limiter, fetch PageFetcher[T]) *PageIterator[T] {
	if cursor.Limit > maxPaginationLimit {
		cursor.Limit = maxPaginationLimit
	}
	if cursor.Limit < 0 {
		cursor.Limit = 0
	}
	return &PageIterator[T]{
		ctx:     ctx,
		fetch:   fetch,
		limiter: limiter,
		cursor:  cursor,
		hasMore: true,
	}
}

// HasNext reports whether Next may return another item.
func (it *PageIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next item, fetching a new page when needed. After the last
// item it returns ErrIteratorDone; after a failed fetch it keeps returning
// that error.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T
	if it.err != nil {
		return zero, it.err
	}

	for it.bufferIdx >= len(it.buffer) {
		if !it.hasMore {
			return zero, ErrIteratorDone
		}
		if err := it.loadPage(); err != nil {
			it.err = err
			return zero, err
		}
	}

	item := it.buffer[it.bufferIdx]
	it.bufferIdx++
	return item, nil
}

// Pages returns how many pages have been fetched so far.
func (it *PageIterator[T]) Pages() int {
	return it.pages
}

// Cursor returns the cursor the next fetch would use.
func (it *PageIterator[T]) Cursor() types.ListingCursor {
	return it.cursor
}

func (it *PageIterator[T]) loadPage() error {
	if it.limiter != nil {
		if err := it.limiter.Wait(it.ctx); err != nil {
			return err
		}
	}

	page, err := it.fetch(it.ctx, it.cursor)
	if err != nil {
		return err
	}
	it.pages++

	it.buffer = nil
	it.bufferIdx = 0
	if page != nil {
		it.buffer = page.Data.Children
	}

	after := page.After()
	// A repeated "after" would loop forever on the same page.
	if len(it.buffer) == 0 || after == "" || after == it.cursor.After {
		it.hasMore = false
	}
	it.cursor = it.cursor.Next(after, len(it.buffer))
	return nil
}

// CommentIterator traverses a comment tree one comment at a time.
type CommentIterator struct {
	queue      []iterEntry
	depthFirst bool
	filter     func(*types.Comment) bool
	maxDepth   int
}

type iterEntry struct {
	comment *types.Comment
	depth   int
}

// CommentIteratorOptions configures a CommentIterator.
type CommentIteratorOptions struct {
	// DepthFirst visits replies before siblings. Otherwise level by level.
	DepthFirst bool
	// Filter skips comments (and their replies) for which it returns false.
	Filter func(*types.Comment) bool
	// MaxDepth is the number of levels visited; 1 means top-level only. 0 is
	// unlimited.
	MaxDepth int
}

// NewCommentIterator creates an iterator over nodes. Nil opts means depth first.
func NewCommentIterator(nodes []types.CommentNode, opts *CommentIteratorOptions) *CommentIterator {
	if opts == nil {
		opts = &CommentIteratorOptions{DepthFirst: true}
	}
	it := &CommentIterator{
		depthFirst: opts.DepthFirst,
		filter:     opts.Filter,
		maxDepth:   opts.MaxDepth,
	}
	it.push(nodes, 0)
	return it
}

// HasNext reports whether another comment may be returned. With a filter set
// Next can still return ErrIteratorDone after HasNext was true.
func (it *CommentIterator) HasNext() bool {
	return len(it.queue) > 0
}

// Next returns the next comment.
func (it *CommentIterator) Next() (*types.Comment, error) {
	for len(it.queue) > 0 {
		var entry iterEntry
		if it.depthFirst {
			entry = it.queue[len(it.queue)-1]
			it.queue = it.queue[:len(it.queue)-1]
		} else {
			entry = it.queue[0]
			it.queue = it.queue[1:]
		}

		if it.filter != nil && !it.filter(entry.comment) {
			continue
		}
		if it.maxDepth == 0 || entry.depth+1 < it.maxDepth {
			it.push(entry.comment.Replies.Children(), entry.depth+1)
		}
		return entry.comment, nil
	}
	return nil, ErrIteratorDone
}

func (it *CommentIterator) push(nodes []types.CommentNode, depth int) {
	entries := make([]iterEntry, 0, len(nodes))
	for _, node := range nodes {
		if node.Comment != nil {
			entries = append(entries, iterEntry{comment: node.Comment, depth: depth})
		}
	}
	if !it.depthFirst {
		it.queue = append(it.queue, entries...)
		return
	}
	// The stack pops from the end, so push in reverse to keep listing order.
	for i := len(entries) - 1; i >= 0; i-- {
		it.queue = append(it.queue, entries[i])
	}
}
